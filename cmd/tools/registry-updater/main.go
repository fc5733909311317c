// cmd/tools/registry-updater/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"mergington-activities/internal/activity/store"
	"mergington-activities/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		help(out)
		return errors.New("command is required")
	}

	switch args[0] {
	case "add":
		return runAdd(args[1:], out)
	case "list":
		return runList(args[1:], out)
	case "validate":
		return runValidate(args[1:], out)
	case "init":
		return runInit(args[1:], out)
	case "help", "-h", "--help":
		help(out)
		return nil
	default:
		help(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runAdd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	name := fs.String("name", "", "Activity name (e.g., Robotics Club)")
	description := fs.String("description", "", "Description")
	schedule := fs.String("schedule", "", "Schedule (e.g., Wednesdays, 4:00 PM - 5:30 PM)")
	maxParticipants := fs.Int("max", 0, "Maximum participants")
	participants := fs.String("participants", "", "Comma-separated initial participant emails")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" || *maxParticipants <= 0 {
		fs.Usage()
		return errors.New("name and a positive max are required for add")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = registry.New()
	}

	activity := registry.Activity{
		Name:            *name,
		Description:     *description,
		Schedule:        *schedule,
		MaxParticipants: *maxParticipants,
		Participants:    splitEmails(*participants),
	}
	if err := reg.Add(activity); err != nil {
		return err
	}
	if err := registry.SaveRegistry(*path, reg); err != nil {
		return err
	}

	fmt.Fprintf(out, "Added activity: %s\n", *name)
	return nil
}

func runList(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	// Round-trip through the store so the listing matches what the server
	// would accept.
	s, err := store.New(reg.ToStoreSeed())
	if err != nil {
		return err
	}
	for _, name := range s.Names() {
		a, _ := s.Get(name)
		fmt.Fprintf(out, "%-20s %2d/%-2d  %s\n", a.Name, len(a.Participants), a.MaxParticipants, a.Schedule)
	}
	return nil
}

func runValidate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	if len(reg.Activities) == 0 {
		return errors.New("registry contains no activities")
	}

	fmt.Fprintf(out, "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func runInit(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(*path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", *path)
	}

	reg := registry.FromStore(store.DefaultActivities())
	if err := registry.SaveRegistry(*path, reg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d default activities to %s\n", len(reg.Activities), *path)
	return nil
}

func splitEmails(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func help(out io.Writer) {
	fmt.Fprint(out, `
Usage: registry-updater <command> [flags]

Commands:
  add       Add a new activity to the registry
  list      List activities with roster size and schedule
  validate  Validate the registry file against its schema
  init      Write the built-in activities to a new registry file
  help      Show this help message

Examples:
  registry-updater add -name "Robotics Club" -description "Build and program robots" -schedule "Wednesdays, 4:00 PM - 5:30 PM" -max 10
  registry-updater list -path configs/activity-registry.json
  registry-updater validate -path configs/activity-registry.json
  registry-updater init -path configs/activity-registry.json -force

Use 'registry-updater <command> -h' for more information about a command.
`)
}
