package melcloudhome

import (
	"errors"
	"testing"
)

func twoBuildingProfile() *UserProfile {
	return &UserProfile{
		Buildings: []Building{
			{
				ID:   "b1",
				Name: "Home",
				AirToAirUnits: []Device{
					{ID: "ata-1", GivenDisplayName: "Living Room"},
				},
				AirToWaterUnits: []Device{
					{ID: "atw-1", GivenDisplayName: "Boiler"},
				},
			},
			{
				ID:   "b2",
				Name: "Cabin",
				AirToAirUnits: []Device{
					{ID: "ata-2", GivenDisplayName: "Bedroom"},
				},
			},
		},
	}
}

func TestExtractDevicesOrderAndTagging(t *testing.T) {
	profile := twoBuildingProfile()
	devices := ExtractDevices(profile)

	want := []struct {
		id       string
		category DeviceCategory
	}{
		{"ata-1", CategoryAirToAir},
		{"atw-1", CategoryAirToWater},
		{"ata-2", CategoryAirToAir},
	}
	if len(devices) != len(want) {
		t.Fatalf("expected %d devices, got %d", len(want), len(devices))
	}
	for i, expected := range want {
		if devices[i].ID != expected.id {
			t.Fatalf("position %d: expected %s, got %s", i, expected.id, devices[i].ID)
		}
		if devices[i].Category != expected.category {
			t.Fatalf("device %s: expected category %s, got %s", expected.id, expected.category, devices[i].Category)
		}
	}
}

func TestExtractDevicesDoesNotMutateSnapshot(t *testing.T) {
	profile := twoBuildingProfile()
	_ = ExtractDevices(profile)

	if profile.Buildings[0].AirToAirUnits[0].Category != "" {
		t.Fatalf("extraction must tag copies, not the snapshot's devices")
	}
	if profile.Buildings[0].AirToWaterUnits[0].Category != "" {
		t.Fatalf("extraction must tag copies, not the snapshot's devices")
	}
}

func TestExtractDevicesNilProfile(t *testing.T) {
	if devices := ExtractDevices(nil); devices != nil {
		t.Fatalf("expected nil for nil profile, got %v", devices)
	}
}

func TestFindDevice(t *testing.T) {
	profile := twoBuildingProfile()

	device, ok := FindDevice(profile, "atw-1")
	if !ok {
		t.Fatalf("expected to find atw-1")
	}
	if device.Category != CategoryAirToWater {
		t.Fatalf("expected atwunit category, got %s", device.Category)
	}

	if _, ok := FindDevice(profile, "nope"); ok {
		t.Fatalf("unknown id must be absent, not an error")
	}
}

func TestExtractStateLastWins(t *testing.T) {
	device := Device{Settings: []Setting{
		{Name: "Power", Value: "True"},
		{Name: "Temperature", Value: "22"},
		{Name: "Power", Value: "False"},
	}}

	state := ExtractState(device)
	if state["Power"] != "False" {
		t.Fatalf("later duplicate must win, got %q", state["Power"])
	}
	if state["Temperature"] != "22" {
		t.Fatalf("unexpected temperature: %q", state["Temperature"])
	}
	if len(state) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(state))
	}
}

func TestStateFromProfile(t *testing.T) {
	profile := twoBuildingProfile()
	profile.Buildings[0].AirToWaterUnits[0].Settings = []Setting{
		{Name: "Power", Value: "True"},
	}

	state, ok, err := StateFromProfile(profile, "atw-1")
	if err != nil || !ok {
		t.Fatalf("expected state, got ok=%v err=%v", ok, err)
	}
	if state["Power"] != "True" {
		t.Fatalf("unexpected state: %v", state)
	}

	if _, ok, err := StateFromProfile(profile, "missing"); ok || err != nil {
		t.Fatalf("unknown device must be absent without error, got ok=%v err=%v", ok, err)
	}
}

func TestStateFromProfileRequiresProfile(t *testing.T) {
	_, _, err := StateFromProfile(nil, "atw-1")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}
