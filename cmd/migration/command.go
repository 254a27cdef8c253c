package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type command struct {
	name    string
	steps   int
	version int
	target  uint
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errors.New("missing command")
	}

	cmd := command{name: strings.ToLower(strings.TrimSpace(args[0]))}
	rest := args[1:]

	switch cmd.name {
	case "up", "version":
		return cmd, nil
	case "down":
		cmd.steps = 1
		if len(rest) == 0 {
			return cmd, nil
		}
		steps, err := strconv.Atoi(strings.TrimSpace(rest[0]))
		if err != nil {
			return command{}, fmt.Errorf("invalid down steps %q: %w", rest[0], err)
		}
		if steps <= 0 {
			return command{}, errors.New("down steps must be > 0")
		}
		cmd.steps = steps
		return cmd, nil
	case "force":
		if len(rest) == 0 {
			return command{}, errors.New("force requires a version argument")
		}
		// -1 is accepted by golang-migrate to clear the version table.
		version, err := strconv.Atoi(strings.TrimSpace(rest[0]))
		if err != nil {
			return command{}, fmt.Errorf("invalid version %q: %w", rest[0], err)
		}
		if version < -1 {
			return command{}, errors.New("version must be >= -1")
		}
		cmd.version = version
		return cmd, nil
	case "goto", "migrate":
		if len(rest) == 0 {
			return command{}, errors.New("goto requires a target version argument")
		}
		target, err := strconv.ParseUint(strings.TrimSpace(rest[0]), 10, 64)
		if err != nil {
			return command{}, fmt.Errorf("invalid target version %q: %w", rest[0], err)
		}
		cmd.name = "goto"
		cmd.target = uint(target)
		return cmd, nil
	default:
		return command{}, fmt.Errorf("unknown command %q", cmd.name)
	}
}
