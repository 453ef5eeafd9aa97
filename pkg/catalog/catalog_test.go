package catalog

import (
	"reflect"
	"testing"
)

func TestCatalogFirstWins(t *testing.T) {
	c := New()
	c.AddAll([]Command{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}})
	c.AddAll([]Command{{Name: "B", Value: "x"}, {Name: "C", Value: "3"}})

	want := []string{"A=1", "B=2", "C=3"}
	if got := c.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %v, want %v", got, want)
	}
}

func TestCatalogAdd(t *testing.T) {
	tests := []struct {
		name  string
		cmd   Command
		added bool
	}{
		{"valid", Command{Name: "Power", Value: "AAAAAQAAAAEAAAAVAw=="}, true},
		{"blank name", Command{Name: "", Value: "x"}, false},
		{"blank value", Command{Name: "Power2", Value: ""}, false},
		{"duplicate name", Command{Name: "Power", Value: "other"}, false},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Add(tt.cmd); got != tt.added {
				t.Errorf("Add(%+v) = %v, want %v", tt.cmd, got, tt.added)
			}
		})
	}

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCatalogCommandsInsertionOrder(t *testing.T) {
	c := New()
	c.AddAll([]Command{{Name: "Zoom", Value: "3"}, {Name: "Audio", Value: "1"}, {Name: "Mute", Value: "2"}})

	got := c.Commands()
	want := []Command{{Name: "Zoom", Value: "3"}, {Name: "Audio", Value: "1"}, {Name: "Mute", Value: "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Commands() = %v, want %v", got, want)
	}
}

func TestCatalogLinesSortedCaseInsensitive(t *testing.T) {
	c := New()
	c.AddAll([]Command{
		{Name: "down", Value: "2"},
		{Name: "Up", Value: "1"},
		{Name: "ChannelUp", Value: "4"},
		{Name: "confirm", Value: "3"},
	})

	want := []string{"ChannelUp=4", "confirm=3", "down=2", "Up=1"}
	if got := c.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %v, want %v", got, want)
	}
}

func TestCatalogLinesEncodeValues(t *testing.T) {
	c := New()
	c.Add(Command{Name: "Power", Value: "AAAAAQAAAAEAAAAVAw=="})
	c.Add(Command{Name: "Hdmi 1", Value: "extInput:hdmi?port=1"})

	want := []string{
		"Hdmi 1=extInput%3Ahdmi%3Fport%3D1",
		"Power=AAAAAQAAAAEAAAAVAw%3D%3D",
	}
	if got := c.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %v, want %v", got, want)
	}
}

func TestCatalogEmptyLines(t *testing.T) {
	c := New()
	if got := c.Lines(); len(got) != 0 {
		t.Errorf("Lines() = %v, want empty", got)
	}
}
