package note

// DeviceSpec describes a supported tablet model: its native page
// resolution and the equipment code the device writes into headers.
type DeviceSpec struct {
	Name      string
	Width     int
	Height    int
	DPI       int
	Equipment string
}

// Known device profiles. A5X2 (Manta) is the only model whose internal
// equipment code has been verified against device-authored files; the
// remaining entries carry their commercial names until goldens from
// those models become available.
var deviceSpecs = map[string]DeviceSpec{
	"A5X":   {Name: "A5X", Width: 1404, Height: 1872, DPI: 226, Equipment: "A5X"},
	"A5X2":  {Name: "A5X2", Width: 1920, Height: 2560, DPI: 300, Equipment: "N5"},
	"Manta": {Name: "A5X2", Width: 1920, Height: 2560, DPI: 300, Equipment: "N5"},
	"A6X":   {Name: "A6X", Width: 1404, Height: 1872, DPI: 300, Equipment: "A6X"},
	"A6X2":  {Name: "A6X2", Width: 1404, Height: 1872, DPI: 300, Equipment: "A6X2"},
	"Nomad": {Name: "A6X2", Width: 1404, Height: 1872, DPI: 300, Equipment: "A6X2"},
}

// LookupDevice resolves a commercial device name (or alias) to its
// profile. Unknown names are an error, never a silent default: an
// equipment code the device does not recognize makes the file unusable.
func LookupDevice(name string) (DeviceSpec, error) {
	if spec, ok := deviceSpecs[name]; ok {
		return spec, nil
	}
	return DeviceSpec{}, ErrUnsupportedDevice
}

// DeviceNames returns the accepted device names in stable order.
func DeviceNames() []string {
	return []string{"A5X", "A5X2", "Manta", "A6X", "A6X2", "Nomad"}
}
