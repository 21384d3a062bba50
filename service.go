package melcloudhome

// Pure-data operations over a fetched profile snapshot. None of these touch
// the network or the cache's freshness state.

// ExtractDevices flattens the profile's buildings into a single device list,
// in building order, air-to-air units before air-to-water units within each
// building. Every returned device is a tagged copy; the snapshot's own
// devices are never mutated.
func ExtractDevices(profile *UserProfile) []Device {
	if profile == nil {
		return nil
	}
	var devices []Device
	for _, building := range profile.Buildings {
		for _, unit := range building.AirToAirUnits {
			unit.Category = CategoryAirToAir
			devices = append(devices, unit)
		}
		for _, unit := range building.AirToWaterUnits {
			unit.Category = CategoryAirToWater
			devices = append(devices, unit)
		}
	}
	return devices
}

// FindDevice returns the first device with the given id. A missing device is
// an ordinary absent result, not an error.
func FindDevice(profile *UserProfile, id string) (Device, bool) {
	for _, device := range ExtractDevices(profile) {
		if device.ID == id {
			return device, true
		}
	}
	return Device{}, false
}

// ExtractState projects a device's settings list into a name→value map.
// The vendor can emit repeated names; the last occurrence wins.
func ExtractState(device Device) map[string]string {
	state := make(map[string]string, len(device.Settings))
	for _, setting := range device.Settings {
		state[setting.Name] = setting.Value
	}
	return state
}

// StateFromProfile projects the cached settings of one device. Querying
// before any profile was ever fetched is a hard ErrNotAuthenticated; an
// unknown id is an absent result.
func StateFromProfile(profile *UserProfile, id string) (map[string]string, bool, error) {
	if profile == nil {
		return nil, false, ErrNotAuthenticated
	}
	device, ok := FindDevice(profile, id)
	if !ok {
		return nil, false, nil
	}
	return ExtractState(device), true, nil
}
