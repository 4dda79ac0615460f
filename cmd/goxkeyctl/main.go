// goxkeyctl is the control CLI for the goxkey daemon.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hongmd/goxkey/internal/config"
	"github.com/hongmd/goxkey/internal/ipc"
)

var (
	socketPath = flag.String("socket", "", "path to the daemon control socket")
	jsonOutput = flag.Bool("json", false, "print machine-readable JSON")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)

	switch cmd {
	case "status":
		cmdStatus()
	case "toggle":
		cmdToggle()
	case "on":
		cmdSetEnabled(true)
	case "off":
		cmdSetEnabled(false)
	case "reload":
		cmdReload()
	case "ping":
		cmdPing()
	case "stop":
		cmdStop()
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `goxkeyctl - Control utility for goxkey

Usage: goxkeyctl [options] <command>

Commands:
  status    Show daemon status
  toggle    Flip Vietnamese input on or off
  on        Turn Vietnamese input on
  off       Turn Vietnamese input off
  reload    Re-read the configuration file
  ping      Check that the daemon is responsive
  stop      Shut the daemon down
  help      Show this help message

Options:
  -socket <path>  Path to the control socket (default: platform runtime dir)
  -json           Print machine-readable JSON`)
}

func connect() *ipc.Client {
	path := *socketPath
	if path == "" {
		path = config.DefaultSocketPath()
	}

	client := ipc.NewClient(ipc.DefaultClientConfig(path))
	if err := client.Connect(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Is the goxkey daemon running?")
		os.Exit(1)
	}
	return client
}

func cmdStatus() {
	client := connect()
	defer client.Close()

	status, err := client.Status()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		data, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Println("=== goxkey Status ===")
	fmt.Printf("Version:      %s\n", status.Version)
	fmt.Printf("Input:        %s\n", onOff(status.Enabled))
	fmt.Printf("Auto-toggle:  %s\n", onOff(status.AutoToggle))
	fmt.Printf("Hotkey:       %s\n", status.Hotkey)
	fmt.Printf("Macros:       %d\n", status.MacroCount)
	if status.ActiveApp != "" {
		fmt.Printf("Active app:   %s\n", status.ActiveApp)
	}
	fmt.Printf("Uptime:       %s\n", status.Uptime.Round(time.Second))
}

func cmdToggle() {
	client := connect()
	defer client.Close()

	enabled, err := client.Toggle()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Vietnamese input: %s\n", onOff(enabled))
}

func cmdSetEnabled(enabled bool) {
	client := connect()
	defer client.Close()

	if err := client.SetEnabled(enabled); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Vietnamese input: %s\n", onOff(enabled))
}

func cmdReload() {
	client := connect()
	defer client.Close()

	if err := client.Reload(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Configuration reloaded.")
}

func cmdPing() {
	client := connect()
	defer client.Close()

	start := time.Now()
	if err := client.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Daemon is responsive (%s).\n", time.Since(start).Round(time.Microsecond))
}

func cmdStop() {
	client := connect()
	defer client.Close()

	if err := client.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Daemon shutting down.")
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
