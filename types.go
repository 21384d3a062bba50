package melcloudhome

import "encoding/json"

// DeviceCategory is the device kind as the write endpoints expect it in the
// URL path. It is never present on the wire in context documents; the
// extraction step assigns it.
type DeviceCategory string

const (
	CategoryAirToAir   DeviceCategory = "ataunit"
	CategoryAirToWater DeviceCategory = "atwunit"
)

// Setting is a single name/value pair from a device's settings list.
// Values arrive as strings regardless of their logical type ("True", "21.5").
type Setting struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Capabilities describes what a unit can do: numeric ranges plus boolean
// feature flags. The refridgerentAddress tag keeps the vendor's wire
// spelling.
type Capabilities struct {
	MaxImportPower                int     `json:"maxImportPower"`
	MaxHeatOutput                 int     `json:"maxHeatOutput"`
	TemperatureUnit               string  `json:"temperatureUnit"`
	HasHotWater                   bool    `json:"hasHotWater"`
	ImmersionHeaterCapacity       int     `json:"immersionHeaterCapacity"`
	MinSetTankTemperature         float64 `json:"minSetTankTemperature"`
	MaxSetTankTemperature         float64 `json:"maxSetTankTemperature"`
	MinSetTemperature             float64 `json:"minSetTemperature"`
	MaxSetTemperature             float64 `json:"maxSetTemperature"`
	TemperatureIncrement          float64 `json:"temperatureIncrement"`
	TemperatureIncrementOverride  string  `json:"temperatureIncrementOverride"`
	HasHalfDegrees                bool    `json:"hasHalfDegrees"`
	HasZone2                      bool    `json:"hasZone2"`
	HasDualRoomTemperature        bool    `json:"hasDualRoomTemperature"`
	HasThermostatZone1            bool    `json:"hasThermostatZone1"`
	HasThermostatZone2            bool    `json:"hasThermostatZone2"`
	HasHeatZone1                  bool    `json:"hasHeatZone1"`
	HasHeatZone2                  bool    `json:"hasHeatZone2"`
	HasMeasuredEnergyConsumption  bool    `json:"hasMeasuredEnergyConsumption"`
	HasMeasuredEnergyProduction   bool    `json:"hasMeasuredEnergyProduction"`
	HasEstimatedEnergyConsumption bool    `json:"hasEstimatedEnergyConsumption"`
	HasEstimatedEnergyProduction  bool    `json:"hasEstimatedEnergyProduction"`
	FTCModel                      int     `json:"ftcModel"`
	RefrigerantAddress            int     `json:"refridgerentAddress"`
	HasDemandSideControl          bool    `json:"hasDemandSideControl"`
}

// Device is one air-to-air or air-to-water unit. Devices are value objects:
// reading one never mutates cached state. Category is filled in by
// ExtractDevices, not by the decoder.
type Device struct {
	ID                 string            `json:"id"`
	Category           DeviceCategory    `json:"-"`
	GivenDisplayName   string            `json:"givenDisplayName"`
	DisplayIcon        string            `json:"displayIcon"`
	Settings           []Setting         `json:"settings"`
	MACAddress         string            `json:"macAddress"`
	TimeZone           string            `json:"timeZone"`
	RSSI               int               `json:"rssi"`
	FTCModel           int               `json:"ftcModel"`
	Schedule           []json.RawMessage `json:"schedule"`
	ScheduleEnabled    bool              `json:"scheduleEnabled"`
	FrostProtection    *string           `json:"frostProtection"`
	OverheatProtection *string           `json:"overheatProtection"`
	HolidayMode        *string           `json:"holidayMode"`
	IsConnected        bool              `json:"isConnected"`
	IsInError          bool              `json:"isInError"`
	Capabilities       Capabilities      `json:"capabilities"`
}

// Building groups units by site. Buildings only ever exist nested inside a
// UserProfile.
type Building struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Timezone        string   `json:"timezone"`
	AirToAirUnits   []Device `json:"airToAirUnits"`
	AirToWaterUnits []Device `json:"airToWaterUnits"`
}

// UserProfile is the full topology the vendor returns from user/context.
type UserProfile struct {
	ID                               string            `json:"id"`
	Firstname                        string            `json:"firstname"`
	Lastname                         string            `json:"lastname"`
	Email                            string            `json:"email"`
	Language                         string            `json:"language"`
	NumberOfDevicesAllowed           int               `json:"numberOfDevicesAllowed"`
	NumberOfBuildingsAllowed         int               `json:"numberOfBuildingsAllowed"`
	NumberOfGuestUsersAllowedPerUnit int               `json:"numberOfGuestUsersAllowedPerUnit"`
	NumberOfGuestDevicesAllowed      int               `json:"numberOfGuestDevicesAllowed"`
	Buildings                        []Building        `json:"buildings"`
	GuestBuildings                   []Building        `json:"guestBuildings"`
	Scenes                           []json.RawMessage `json:"scenes"`
}
