package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/Alia5/ps2cursor/internal/bringup"
)

// Devices lists the mouse device nodes known to udev.
type Devices struct {
	JSON bool `name:"json" help:"Print the device list as JSON"`

	list func() ([]bringup.Device, error) `kong:"-"`
}

// Run is called by Kong when the devices command is executed.
func (d *Devices) Run(logger *slog.Logger) error {
	return d.Print(os.Stdout, logger)
}

// Print writes the device list to out.
func (d *Devices) Print(out io.Writer, logger *slog.Logger) error {
	list := d.list
	if list == nil {
		list = bringup.Devices
	}
	devs, err := list()
	if err != nil {
		return fmt.Errorf("failed to list mouse devices: %w", err)
	}
	logger.Debug("Enumerated mouse devices", "count", len(devs))

	if d.JSON {
		if devs == nil {
			devs = []bringup.Device{}
		}
		b, err := json.MarshalIndent(devs, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tNAME\tSYSPATH")
	for _, dev := range devs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", dev.Node, dev.Name, dev.SysPath)
	}
	return tw.Flush()
}
