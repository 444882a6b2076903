package marlin

import (
	"sort"
	"strings"

	"github.com/jochenvg/go-udev"
)

// Candidate is one USB-serial device discovered on the bus, a plausible
// home for a Marlin board.
type Candidate struct {
	DevNode   string
	VendorID  string
	ProductID string
	Serial    string
}

// DiscoverPorts enumerates tty* USB-serial devices via libudev, the same
// library the teacher links in (via cgo) for USB hotplug detection of its
// PTT/CM108 hardware - repurposed here to list candidate Marlin boards
// rather than push-to-talk adapters.
func DiscoverPorts() ([]Candidate, error) {
	u := udev.Udev{}
	e := u.NewEnumerate()

	if err := e.AddMatchSubsystem("tty"); err != nil {
		return nil, err
	}
	if err := e.AddMatchIsInitialized(); err != nil {
		return nil, err
	}

	devices, err := e.Devices()
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, d := range devices {
		node := d.Devnode()
		if node == "" || !strings.Contains(node, "/dev/tty") {
			continue
		}
		if !strings.Contains(node, "USB") && !strings.Contains(node, "ACM") {
			continue
		}

		out = append(out, Candidate{
			DevNode:   node,
			VendorID:  d.PropertyValue("ID_VENDOR_ID"),
			ProductID: d.PropertyValue("ID_MODEL_ID"),
			Serial:    d.PropertyValue("ID_SERIAL_SHORT"),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].DevNode < out[j].DevNode })
	return out, nil
}
