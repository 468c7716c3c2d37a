package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/doridoridoriand/pvecfg/internal/cli"
	"github.com/doridoridoriand/pvecfg/internal/config"
	"github.com/doridoridoriand/pvecfg/internal/metrics"
	"github.com/doridoridoriand/pvecfg/internal/parser"
	"github.com/doridoridoriand/pvecfg/internal/schedule"
	"github.com/doridoridoriand/pvecfg/internal/scheduler"
	"github.com/doridoridoriand/pvecfg/internal/slot"
	"github.com/doridoridoriand/pvecfg/internal/state"
	"github.com/doridoridoriand/pvecfg/internal/usage"
	"github.com/doridoridoriand/pvecfg/internal/version"
)

// readValue returns arg, or standard input when arg is "-".
func readValue(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(raw), "\r\n"), nil
}

// decode applies the format named by args[0] to the value in args[1] and
// returns the value read.
func (a *app) decode(cmd *cobra.Command, args []string, key string) (decoded, string, error) {
	fn, err := lookupFormat(args[0])
	if err != nil {
		return decoded{}, "", err
	}
	value, err := readValue(cmd, args[1])
	if err != nil {
		return decoded{}, "", err
	}
	res, err := fn(a.parser, value, key)
	return res, value, err
}

func (a *app) parseCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "parse <format> <value|->",
		Short: "Decode a property string into its typed record",
		Long: "Decode a property string into its typed record.\n\nFormats: " +
			strings.Join(formatNames(), ", "),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, _, err := a.decode(cmd, args, key)
			if err != nil {
				return err
			}
			return a.render(res.Record, func(w io.Writer) error {
				return writeFields(w, res.Record)
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "drive key (qemu-drive) or default key (property-string)")
	return cmd
}

type normalizeResult struct {
	Format string `json:"format" yaml:"format"`
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}

func (a *app) normalizeCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "normalize <format> <value|->",
		Short: "Decode a property string and print its canonical form",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, input, err := a.decode(cmd, args, key)
			if err != nil {
				return err
			}
			out := normalizeResult{Format: args[0], Input: input, Output: res.Normalized}
			return a.render(out, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, res.Normalized)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "drive key (qemu-drive) or default key (property-string)")
	return cmd
}

var (
	netKey      = regexp.MustCompile(`^net\d+$`)
	ipConfigKey = regexp.MustCompile(`^ipconfig\d+$`)
	mpKey       = regexp.MustCompile(`^mp\d+$`)
)

// guestEntry is one key of a decoded guest config. Keys without a known
// format, or whose value failed to decode, carry only Raw.
type guestEntry struct {
	Format     string      `json:"format,omitempty" yaml:"format,omitempty"`
	Record     interface{} `json:"record,omitempty" yaml:"record,omitempty"`
	Normalized string      `json:"normalized,omitempty" yaml:"normalized,omitempty"`
	Raw        string      `json:"raw" yaml:"raw"`
}

// guestDefaults are the hardware defaults of a virtual machine's OS type.
type guestDefaults struct {
	OSType      string `json:"ostype,omitempty" yaml:"ostype,omitempty"`
	Windows     bool   `json:"windows" yaml:"windows"`
	Bus         string `json:"bus" yaml:"bus"`
	NetworkCard string `json:"network_card" yaml:"network_card"`
}

type guestReport struct {
	Kind        string                `json:"kind" yaml:"kind"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Defaults    *guestDefaults        `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Keys        map[string]guestEntry `json:"keys" yaml:"keys"`
	Snapshots   []string              `json:"snapshots,omitempty" yaml:"snapshots,omitempty"`
}

// osType returns the OS type of a virtual machine config, or the one from
// the settings when the config names none.
func (a *app) osType(values map[string]string) string {
	if v := values["ostype"]; v != "" {
		return v
	}
	if a.settings != nil {
		return a.settings.OSType
	}
	return ""
}

// guestFormat returns the format of key in a virtual machine or container
// config, or "" when the key holds no property string.
func guestFormat(key string, container bool) string {
	if container {
		switch {
		case netKey.MatchString(key):
			return parser.FormatLxcNet
		case key == "rootfs" || mpKey.MatchString(key):
			return parser.FormatMountPoint
		case key == "startup":
			return parser.FormatStartup
		}
		return ""
	}

	switch {
	case netKey.MatchString(key):
		return parser.FormatQemuNet
	case ipConfigKey.MatchString(key):
		return parser.FormatIPConfig
	case key == "startup":
		return parser.FormatStartup
	case key == "cpu":
		return parser.FormatCPU
	case key == "smbios1":
		return parser.FormatSmbios
	case key == "sshkeys":
		return parser.FormatSSHKey
	}
	if s, err := slot.ParseKey(key); err == nil {
		for _, b := range slot.DiskBuses {
			if s.Bus == b {
				return parser.FormatDrive
			}
		}
	}
	return ""
}

// decodeSSHKeys decodes the URI encoded, newline separated key list stored
// in the sshkeys option. Lines that are not keys are skipped with a warning.
func (a *app) decodeSSHKeys(value string) (decoded, error) {
	text, err := url.PathUnescape(value)
	if err != nil {
		return decoded{}, err
	}
	keys := []parser.SSHKey{}
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		k, ok := a.parser.ParseSSHKey(line)
		if !ok {
			a.logger.Warn("skipping ssh key line", map[string]interface{}{"line": line})
			continue
		}
		keys = append(keys, k)
		lines = append(lines, a.parser.PrintSSHKey(k))
	}
	return decoded{keys, url.PathEscape(strings.Join(lines, "\n"))}, nil
}

func (a *app) decodeGuest(cfg *config.GuestConfig) guestReport {
	container := cfg.IsContainer()
	report := guestReport{
		Kind:        "qemu",
		Description: cfg.Description,
		Keys:        make(map[string]guestEntry, len(cfg.Values)),
	}
	if container {
		report.Kind = "lxc"
	} else {
		ostype := a.osType(cfg.Values)
		d := slot.DefaultsFor(ostype)
		report.Defaults = &guestDefaults{
			OSType:      ostype,
			Windows:     slot.IsWindows(ostype),
			Bus:         string(d.BusType),
			NetworkCard: d.NetworkCard,
		}
	}
	for name := range cfg.Snapshots {
		report.Snapshots = append(report.Snapshots, name)
	}
	sort.Strings(report.Snapshots)

	for key, value := range cfg.Values {
		entry := guestEntry{Raw: value}
		format := guestFormat(key, container)
		if format == "" {
			report.Keys[key] = entry
			continue
		}

		var res decoded
		var err error
		if format == parser.FormatSSHKey {
			res, err = a.decodeSSHKeys(value)
		} else {
			res, err = formats[format](a.parser, value, key)
		}
		if err != nil {
			a.logger.Warn("keeping undecodable value", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			report.Keys[key] = entry
			continue
		}
		entry.Format = format
		entry.Record = res.Record
		entry.Normalized = res.Normalized
		report.Keys[key] = entry
	}
	return report
}

// guestFile is the decoded report of one guest config file.
type guestFile struct {
	File        string `json:"file" yaml:"file"`
	guestReport `yaml:",inline"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

func writeGuestTable(w io.Writer, report guestReport) error {
	keys := make([]string, 0, len(report.Keys))
	for k := range report.Keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "KEY\tFORMAT\tVALUE\n")
	for _, k := range keys {
		e := report.Keys[k]
		format, value := e.Format, e.Normalized
		if format == "" {
			format, value = "-", e.Raw
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", k, format, value)
	}
	return tw.Flush()
}

func (a *app) guestCmd() *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "guest <file>...",
		Short: "Decode every property string of one or more guest configs",
		Long: `Decode every property string of one or more guest configs.

A file is either the text form stored on the node ("key: value" lines with
optional [snapshot] sections) or the JSON object returned by the API.
Several files are decoded concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg, err := a.loader.LoadGuestConfig(args[0])
				if err != nil {
					return err
				}
				report := a.decodeGuest(cfg)
				return a.render(report, func(w io.Writer) error {
					return writeGuestTable(w, report)
				})
			}

			results := scheduler.NewScheduler(jobs).Run(cmd.Context(), args,
				func(_ context.Context, path string) (interface{}, error) {
					cfg, err := a.loader.LoadGuestConfig(path)
					if err != nil {
						return nil, err
					}
					return a.decodeGuest(cfg), nil
				})

			files := make([]guestFile, 0, len(results))
			failed := 0
			for _, r := range results {
				f := guestFile{File: r.Name}
				if r.Err != nil {
					failed++
					f.Error = r.Err.Error()
					a.logger.LogError("guest", r.Err, map[string]interface{}{"file": r.Name})
				} else {
					f.guestReport = r.Value.(guestReport)
				}
				files = append(files, f)
			}

			err := a.render(files, func(w io.Writer) error {
				for i, f := range files {
					if i > 0 {
						fmt.Fprintln(w)
					}
					fmt.Fprintf(w, "==> %s <==\n", f.File)
					if f.Error != "" {
						fmt.Fprintf(w, "error: %s\n", f.Error)
						continue
					}
					if err := writeGuestTable(w, f.guestReport); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d guest configs failed to load", failed, len(files))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "maximum number of files decoded at once")
	return cmd
}

type slotResult struct {
	slot.Slot `yaml:",inline"`
	ConfID    string `json:"confid" yaml:"confid"`
}

func (a *app) renderSlot(s slot.Slot) error {
	res := slotResult{Slot: s, ConfID: s.ConfID()}
	return a.render(res, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, res.ConfID)
		return err
	})
}

func (a *app) nextDiskCmd() *cobra.Command {
	var controllers cli.OptionalList
	var ostypeFlag cli.OptionalString
	cmd := &cobra.Command{
		Use:   "nextdisk <file>",
		Short: "Print the next free disk slot of a virtual machine",
		Long: `Print the next free disk slot of a virtual machine.

Controllers are tried most used first, ties broken by the bus preference of
the guest's OS type. A guest without disks starts on the preferred bus of its
OS type. The OS type comes from the guest config, then from the settings;
--ostype overrides both.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loader.LoadGuestConfig(args[0])
			if err != nil {
				return err
			}
			buses, err := config.ParseControllers(a.settings.Controllers)
			if err != nil {
				return err
			}
			if len(buses) == 0 {
				buses = nil
			}

			ostype := a.osType(cfg.Values)
			if v, set := ostypeFlag.Value(); set && v != "" {
				ostype = v
			}

			order := slot.SortByPreviousUsage(a.parser.AttachedDisks(cfg.Values), ostype, buses)
			a.logger.Debug("controller order", map[string]interface{}{"ostype": ostype, "order": order})
			s, ok := slot.NextFreeDisk(order, cfg.Values)
			if !ok {
				return errors.New("no free disk slot")
			}
			return a.renderSlot(s)
		},
	}
	cmd.Flags().Var(&controllers, "controllers", "candidate controllers, e.g. scsi,virtio (override settings)")
	cmd.Flags().Var(&ostypeFlag, "ostype", "OS type used to order controllers (override guest config and settings)")
	return cmd
}

func (a *app) nextMPCmd() *cobra.Command {
	var unused bool
	cmd := &cobra.Command{
		Use:   "nextmp <file>",
		Short: "Print the next free mount point of a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loader.LoadGuestConfig(args[0])
			if err != nil {
				return err
			}
			typ := slot.MP
			if unused {
				typ = slot.Unused
			}
			s, ok := slot.NextFreeMP(typ, cfg.Values)
			if !ok {
				return fmt.Errorf("no free %s slot", typ)
			}
			return a.renderSlot(s)
		},
	}
	cmd.Flags().BoolVar(&unused, "unused", false, "allocate an unused volume slot instead of a mount point")
	return cmd
}

func (a *app) daysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "days <dow>",
		Short: "Render a weekday selection such as mon,tue,wed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := schedule.ParseDays(args[0])
			if err != nil {
				return err
			}
			days := []string{}
			for _, wd := range d.Days() {
				days = append(days, wd.String())
			}
			res := struct {
				DOW      string   `json:"dow" yaml:"dow"`
				Days     []string `json:"days" yaml:"days"`
				Rendered string   `json:"rendered" yaml:"rendered"`
			}{d.Format(), days, d.Render()}
			return a.render(res, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, res.Rendered)
				return err
			})
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Compare dotted version strings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "compare <a> <b>",
		Short: "Print -1, 0 or 1 as a sorts before, equal to or after b",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := version.CompareStrings(args[0], args[1])
			if err != nil {
				return err
			}
			res := struct {
				A       string `json:"a" yaml:"a"`
				B       string `json:"b" yaml:"b"`
				Compare int    `json:"compare" yaml:"compare"`
			}{args[0], args[1], c}
			return a.render(res, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, strconv.Itoa(c))
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "atleast <version> <min>",
		Short: "Report whether version is at least min",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := version.Parse(args[0])
			if err != nil {
				return err
			}
			min, err := version.Parse(args[1])
			if err != nil {
				return err
			}
			ok := version.AtLeast(v, min)
			res := struct {
				Version string `json:"version" yaml:"version"`
				Min     string `json:"min" yaml:"min"`
				AtLeast bool   `json:"atleast" yaml:"atleast"`
			}{v.String(), min.String(), ok}
			return a.render(res, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, strconv.FormatBool(ok))
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ceph <short> [long]",
		Short: "Extract a ceph service version from its short or long form",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			long := ""
			if len(args) > 1 {
				long = args[1]
			}
			v, ok := version.FromCeph(args[0], long)
			if !ok {
				return errors.New("no ceph version found")
			}
			res := struct {
				Version string `json:"version" yaml:"version"`
			}{v}
			return a.render(res, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, v)
				return err
			})
		},
	})

	return cmd
}

func (a *app) usageCmd() *cobra.Command {
	var asMetrics bool
	var mode cli.OptionalMetricsMode
	cmd := &cobra.Command{
		Use:   "usage <resources.json>",
		Short: "Show usage ratios of cluster resources",
		Long: `Show usage ratios of cluster resources.

The file holds the cluster resource list, either as a JSON array or wrapped
in a {"data": [...]} object.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := state.LoadResources(args[0])
			if err != nil {
				return err
			}
			store := state.NewStore(resources)

			if asMetrics {
				_, err := metrics.NewWriter(a.settings.MetricsMode, store).WriteTo(a.stdout)
				return err
			}

			snapshot := store.GetSnapshot()
			return a.render(snapshot, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "ID\tSTATE\tCPU\tMEM\tHOSTMEM\tDISK\n")
				for _, rs := range snapshot {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						rs.ID,
						rs.State,
						dash(usage.RenderCPU(rs.Resource)),
						dash(usage.RenderMemUsage(rs.Resource)),
						dash(usage.RenderPercent(rs.HostMemUsage)),
						dash(usage.RenderDiskUsage(rs.Resource)),
					)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&asMetrics, "metrics", false, "write Prometheus text exposition instead of a table")
	cmd.Flags().Var(&mode, "metrics-mode", "metrics mode: per-resource|aggregated|both (override settings)")
	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
