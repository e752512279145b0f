// Package systemd wraps the host's service manager (systemctl) for
// restarting the bot unit and reporting its status.
package systemd
