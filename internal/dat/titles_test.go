package dat

import (
	"reflect"
	"testing"
)

func TestCanonicalTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Activision Decathlon, The (USA)", "The Activision Decathlon"},
		{"A.E. (USA) (Proto)", "A.E."},
		{"Antarctic Adventure (USA, Europe) (Beta)", "Antarctic Adventure"},
		{"Fistful of Dollars, A", "A Fistful of Dollars"},
		{"Zaxxon (USA)", "Zaxxon"},
		{"No Tags At All", "No Tags At All"},
	}
	for _, c := range cases {
		if got := CanonicalTitle(c.in); got != c.want {
			t.Errorf("CanonicalTitle(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSearchKeys(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"The Activision Decathlon", []string{"the activision decathlon", "theactivisiondecathlon"}},
		{"A.E.", []string{"a e", "ae"}},
		{"Zaxxon", []string{"zaxxon"}},
		{"Mega Man 2", []string{"mega man 2", "megaman2"}},
		{"", nil},
	}
	for _, c := range cases {
		if got := SearchKeys(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("SearchKeys(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
