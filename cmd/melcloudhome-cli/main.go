package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	melcloudhome "github.com/joshp123/melcloudhome-golang"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	email := os.Getenv("MELCLOUDHOME_EMAIL")
	password := os.Getenv("MELCLOUDHOME_PASSWORD")
	if email == "" || password == "" {
		fatal("credentials", fmt.Errorf("MELCLOUDHOME_EMAIL and MELCLOUDHOME_PASSWORD must be set"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var opts []melcloudhome.ClientOption
	if path := os.Getenv("MELCLOUDHOME_CHROMIUM"); path != "" {
		opts = append(opts, melcloudhome.WithChromiumPath(path))
	}
	client, err := melcloudhome.NewClient(opts...)
	if err != nil {
		fatal("new client", err)
	}
	defer client.Close()

	if err := client.Login(ctx, email, password); err != nil {
		fatal("login", err)
	}

	switch os.Args[1] {
	case "list":
		listCmd(ctx, client)
	case "state":
		stateCmd(ctx, client, os.Args[2:])
	case "set":
		setCmd(ctx, client, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func listCmd(ctx context.Context, client *melcloudhome.Client) {
	devices, err := client.ListDevices(ctx)
	if err != nil {
		fatal("list devices", err)
	}
	for _, device := range devices {
		status := "ok"
		if !device.IsConnected {
			status = "offline"
		} else if device.IsInError {
			status = "error"
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", device.ID, device.Category, device.GivenDisplayName, status)
	}
}

func stateCmd(ctx context.Context, client *melcloudhome.Client, args []string) {
	if len(args) < 1 {
		fatal("state", fmt.Errorf("missing device id"))
	}

	state, err := client.GetDeviceState(ctx, args[0])
	if err != nil {
		fatal("get device state", err)
	}

	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s\t%v\n", name, state[name])
	}
}

func setCmd(ctx context.Context, client *melcloudhome.Client, args []string) {
	if len(args) < 3 {
		fatal("set", fmt.Errorf("usage: set <device-id> <category> <state-json>"))
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(args[2]), &payload); err != nil {
		fatal("parse state json", err)
	}

	ack, err := client.SetDeviceState(ctx, args[0], melcloudhome.DeviceCategory(args[1]), payload)
	if err != nil {
		fatal("set device state", err)
	}
	fmt.Println(string(ack))
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: melcloudhome-cli <command>

commands:
  list                                  List devices (id, category, name, status)
  state <device-id>                     Print a device's live state
  set <device-id> <category> <json>     Write a state change (category from list)

credentials come from MELCLOUDHOME_EMAIL / MELCLOUDHOME_PASSWORD;
MELCLOUDHOME_CHROMIUM points at a system Chromium if needed.`)
}

func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
	os.Exit(1)
}
