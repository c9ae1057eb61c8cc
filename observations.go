package station

import "sort"

// InformationCode is the abbreviation of the free-text information field. It
// is not a measurement and is never decoded into a record.
const InformationCode = "Id"

type observation struct {
	name string

	// message is the command that requests the message carrying the field.
	message Command
}

// observations maps a field abbreviation to its observation.
var observations = map[string]observation{
	"Dn": {"wind_dir_min", CommandWind},
	"Dm": {"wind_dir_avg", CommandWind},
	"Dx": {"wind_dir_max", CommandWind},
	"Sn": {"wind_speed_min", CommandWind},
	"Sm": {"wind_speed_avg", CommandWind},
	"Sx": {"wind_speed_max", CommandWind},

	"Ta": {"temperature", CommandPTH},
	"Ua": {"humidity", CommandPTH},
	"Pa": {"pressure", CommandPTH},

	"Rc": {"rain", CommandPrecipitation},
	"Rd": {"rain_duration", CommandPrecipitation},
	"Ri": {"rain_intensity", CommandPrecipitation},
	"Hc": {"hail", CommandPrecipitation},
	"Hd": {"hail_duration", CommandPrecipitation},
	"Hi": {"hail_intensity", CommandPrecipitation},
	"Rp": {"rain_intensity_peak", CommandPrecipitation},
	"Hp": {"hail_intensity_peak", CommandPrecipitation},

	"Th": {"heating_temperature", CommandSupervisor},
	"Vh": {"heating_voltage", CommandSupervisor},
	"Vs": {"supply_voltage", CommandSupervisor},
	"Vr": {"reference_voltage", CommandSupervisor},
	"Id": {"information", CommandSupervisor},
}

// LookupObservation returns the observation name for a field abbreviation.
func LookupObservation(code string) (string, bool) {
	o, ok := observations[code]
	return o.name, ok
}

// ObservationMessage returns the command that requests the message in which
// a field is reported. Every field can also appear in the composite message.
func ObservationMessage(code string) (Command, bool) {
	o, ok := observations[code]
	return o.message, ok
}

// ObservationCodes returns all known abbreviations in sorted order.
func ObservationCodes() []string {
	codes := make([]string, 0, len(observations))

	for code := range observations {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	return codes
}
