// Package dat reads Logiqx DAT manifests and matches their games
// against the catalog.
package dat

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// logiqx mirrors the Logiqx datafile XML layout
type logiqx struct {
	XMLName xml.Name     `xml:"datafile"`
	Header  logiqxHeader `xml:"header"`
	Games   []logiqxGame `xml:"game"`
}

type logiqxHeader struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Version     string `xml:"version"`
	Author      string `xml:"author"`
	Homepage    string `xml:"homepage"`
}

type logiqxGame struct {
	Name        string      `xml:"name,attr"`
	Description string      `xml:"description"`
	Roms        []logiqxRom `xml:"rom"`
}

type logiqxRom struct {
	Name string `xml:"name,attr"`
	Size int64  `xml:"size,attr"`
	CRC  string `xml:"crc,attr"`
	MD5  string `xml:"md5,attr"`
	SHA1 string `xml:"sha1,attr"`
}

// Parse reads a Logiqx DAT manifest into catalog form. Hash attributes
// are validated as hex and lowercased.
func Parse(r io.Reader) (*catalog.DatFile, error) {
	var doc logiqx
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse dat file: %w: %v", util.ErrUnsupportedFormat, err)
	}
	if doc.Header.Name == "" {
		return nil, fmt.Errorf("dat file has no header name: %w", util.ErrUnsupportedFormat)
	}

	df := &catalog.DatFile{
		Name:        doc.Header.Name,
		Description: doc.Header.Description,
		Version:     doc.Header.Version,
		Author:      doc.Header.Author,
		Homepage:    doc.Header.Homepage,
	}

	for _, g := range doc.Games {
		game := catalog.DatGame{Name: g.Name, Description: g.Description}
		for _, rom := range g.Roms {
			crc, err := normalizeHex(rom.CRC, 8)
			if err != nil {
				return nil, fmt.Errorf("game %q rom %q: bad crc: %w", g.Name, rom.Name, err)
			}
			md5, err := normalizeHex(rom.MD5, 32)
			if err != nil {
				return nil, fmt.Errorf("game %q rom %q: bad md5: %w", g.Name, rom.Name, err)
			}
			sha1, err := normalizeHex(rom.SHA1, 40)
			if err != nil {
				return nil, fmt.Errorf("game %q rom %q: bad sha1: %w", g.Name, rom.Name, err)
			}
			game.Roms = append(game.Roms, catalog.DatRom{
				Name: rom.Name, Size: rom.Size, CRC: crc, MD5: md5, SHA1: sha1,
			})
		}
		df.Games = append(df.Games, game)
	}
	return df, nil
}

// normalizeHex lowercases a hex digest and checks its length. Empty
// values pass through; DAT files routinely omit some hash kinds.
func normalizeHex(s string, wantLen int) (string, error) {
	if s == "" {
		return "", nil
	}
	s = strings.ToLower(s)
	if len(s) != wantLen {
		return "", fmt.Errorf("expected %d hex digits, got %d: %w", wantLen, len(s), util.ErrUnsupportedFormat)
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return "", fmt.Errorf("invalid hex digit %q: %w", r, util.ErrUnsupportedFormat)
		}
	}
	return s, nil
}
