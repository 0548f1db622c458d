package models

import (
	"encoding/json"
	"testing"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Coordinate
		wantErr bool
	}{
		{"comma separated", "35.5,51.5", Coordinate{Lat: 35.5, Lon: 51.5}, false},
		{"comma with spaces", " 35.5 , 51.5 ", Coordinate{Lat: 35.5, Lon: 51.5}, false},
		{"json array string", "[35.5,51.5]", Coordinate{Lat: 35.5, Lon: 51.5}, false},
		{"negative values", "-12.25,-77.75", Coordinate{Lat: -12.25, Lon: -77.75}, false},
		{"empty", "", Coordinate{}, true},
		{"garbage", "abc", Coordinate{}, true},
		{"one element", "35.5", Coordinate{}, true},
		{"three elements json", "[1,2,3]", Coordinate{}, true},
		{"non numeric part", "35.5,north", Coordinate{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCoordinate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCoordinate(%q) = %+v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCoordinate(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseCoordinate(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

// 同一坐标字段在存量数据里有三种编码, 解码必须全部兼容
func TestCoordinateUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bare array", `[35.5,51.5]`},
		{"quoted pair", `"35.5,51.5"`},
		{"quoted array", `"[35.5,51.5]"`},
	}

	want := Coordinate{Lat: 35.5, Lon: 51.5}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Coordinate
			if err := json.Unmarshal([]byte(tt.input), &c); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.input, err)
			}
			if c != want {
				t.Errorf("got %+v, want %+v", c, want)
			}
		})
	}
}

func TestCoordinateUnmarshalJSONInvalid(t *testing.T) {
	for _, input := range []string{`"abc"`, `[1]`, `[1,2,3]`, `{}`, `true`} {
		var c Coordinate
		if err := json.Unmarshal([]byte(input), &c); err == nil {
			t.Errorf("unmarshal %s succeeded, want error", input)
		}
	}
}

func TestCoordinateMarshalJSON(t *testing.T) {
	data, err := json.Marshal(Coordinate{Lat: 35.5, Lon: 51.5})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `[35.5,51.5]` {
		t.Errorf("marshal = %s, want [35.5,51.5]", data)
	}
}

func TestReportIsOnline(t *testing.T) {
	r := Report{Status: 1}
	if !r.IsOnline() {
		t.Error("status 1 must be online")
	}
	r.Status = 0
	if r.IsOnline() {
		t.Error("status 0 must be offline")
	}
}
