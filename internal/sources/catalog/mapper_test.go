package catalog

import "testing"

func TestMap(t *testing.T) {
	config := Config{
		{
			"Streaming": []map[string]Entry{
				{"Netflix": {ID: "Netflix", Website: "https://www.netflix.com", Description: " Films "}},
				{"Spotify": {Website: "https://www.spotify.com"}},
			},
		},
		{
			"Cloud": []map[string]Entry{
				{"Broken": {Website: "ftp://broken.example.com"}},
				{"NoSite": {}},
			},
		},
	}

	inputs, skipped, err := Map(config)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	if len(inputs) != 2 {
		t.Fatalf("Map() returned %d inputs, want 2", len(inputs))
	}
	if inputs[0].Name != "Netflix" || inputs[0].Category != "Streaming" {
		t.Errorf("first input = %+v", inputs[0])
	}
	if inputs[0].ID != "netflix" {
		t.Errorf("ID = %q, want lower-cased netflix", inputs[0].ID)
	}
	if inputs[0].Description != "Films" {
		t.Errorf("Description = %q, want trimmed", inputs[0].Description)
	}
	if inputs[1].ID != "" {
		t.Errorf("Spotify ID = %q, want empty", inputs[1].ID)
	}

	if len(skipped) != 2 {
		t.Fatalf("skipped %d entries, want 2", len(skipped))
	}
	for _, sk := range skipped {
		if sk.Category != "Cloud" || sk.Reason == "" {
			t.Errorf("unexpected skipped entry %+v", sk)
		}
	}
}

func TestMapNoValidEntries(t *testing.T) {
	config := Config{{"Cloud": []map[string]Entry{{"NoSite": {}}}}}
	if _, _, err := Map(config); err == nil {
		t.Error("Map() should fail when nothing is valid")
	}
}
