package dat

import (
	"errors"
	"strings"
	"testing"

	"github.com/zorrokid/emulation-file-manager/internal/util"
)

const colecoDat = `<?xml version="1.0"?>
<!DOCTYPE datafile PUBLIC "-//Logiqx//DTD ROM Management Datafile//EN" "http://www.logiqx.com/Dats/datafile.dtd">
<datafile>
	<header>
		<name>ColecoVision</name>
		<description>ColecoVision (20260101)</description>
		<version>20260101</version>
		<author>test</author>
		<homepage>example.org</homepage>
	</header>
	<game name="[BIOS] ColecoVision (USA, Europe)">
		<description>[BIOS] ColecoVision (USA, Europe)</description>
		<rom name="coleco.rom" size="8192" crc="3AA93EF3" sha1="45BEDC4CBDEAC66C7DF59E9E599195C778D86A92"/>
	</game>
	<game name="Zaxxon (USA)">
		<description>Zaxxon (USA)</description>
		<rom name="zaxxon.col" size="24576" crc="e16a2f09" md5="2b0c06dc10e9b4a6a0e5a0539cbf1354" sha1="85e53271e14006f0265921d02d4d736cdc580b0b"/>
	</game>
</datafile>`

func TestParseLogiqxDat(t *testing.T) {
	df, err := Parse(strings.NewReader(colecoDat))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if df.Name != "ColecoVision" || df.Version != "20260101" {
		t.Errorf("unexpected header: %+v", df)
	}
	if len(df.Games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(df.Games))
	}

	bios := df.Games[0]
	if bios.Name != "[BIOS] ColecoVision (USA, Europe)" {
		t.Errorf("unexpected game name %q", bios.Name)
	}
	if len(bios.Roms) != 1 {
		t.Fatalf("expected 1 rom, got %d", len(bios.Roms))
	}
	rom := bios.Roms[0]
	if rom.Size != 8192 {
		t.Errorf("unexpected size %d", rom.Size)
	}
	// hashes are lowercased on parse
	if rom.CRC != "3aa93ef3" {
		t.Errorf("unexpected crc %q", rom.CRC)
	}
	if rom.SHA1 != "45bedc4cbdeac66c7df59e9e599195c778d86a92" {
		t.Errorf("unexpected sha1 %q", rom.SHA1)
	}
	if rom.MD5 != "" {
		t.Errorf("absent md5 must stay empty, got %q", rom.MD5)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"not xml":        "this is not a dat file",
		"missing header": `<datafile><game name="g"/></datafile>`,
		"bad sha1": `<datafile><header><name>x</name></header>
			<game name="g"><rom name="r" size="1" sha1="zzzz"/></game></datafile>`,
		"short crc": `<datafile><header><name>x</name></header>
			<game name="g"><rom name="r" size="1" crc="3aa9"/></game></datafile>`,
	}
	for name, input := range cases {
		if _, err := Parse(strings.NewReader(input)); !errors.Is(err, util.ErrUnsupportedFormat) {
			t.Errorf("%s: expected ErrUnsupportedFormat, got: %v", name, err)
		}
	}
}
