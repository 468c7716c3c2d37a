package config

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var (
	guestKey     = regexp.MustCompile(`^([a-z][a-z0-9_\-.]*):\s*(.*?)\s*$`)
	guestSection = regexp.MustCompile(`^\[([a-zA-Z0-9_\-]+)\]$`)
)

// LoadGuestConfig reads a guest configuration file. Both the stored text
// form ("key: value" lines, '#' description comments and [snapshot]
// sections) and the API's JSON envelope {"data": {...}} are accepted.
func (p FileParser) LoadGuestConfig(path string) (*GuestConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) != 0 && trimmed[0] == '{' {
		return p.DecodeGuestJSON(raw)
	}
	return p.DecodeGuestText(raw)
}

// DecodeGuestText parses the stored text form of a guest configuration.
func (p FileParser) DecodeGuestText(raw []byte) (*GuestConfig, error) {
	cfg := &GuestConfig{Values: map[string]string{}}
	current := cfg.Values
	section := ""
	var description []string

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	// A single line may hold the whole file, e.g. a long sshkeys value.
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), len(raw)+1)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if section == "" {
				description = append(description, strings.TrimPrefix(line, "#"))
			}
			continue
		}

		if m := guestSection.FindStringSubmatch(line); m != nil {
			section = m[1]
			if cfg.Snapshots == nil {
				cfg.Snapshots = map[string]map[string]string{}
			}
			if _, exists := cfg.Snapshots[section]; exists {
				return nil, fmt.Errorf("line %d: duplicate section %q", lineNo, section)
			}
			current = map[string]string{}
			cfg.Snapshots[section] = current
			continue
		}

		key, value, err := p.ParseGuestLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if _, exists := current[key]; exists {
			return nil, fmt.Errorf("line %d: duplicate key %q", lineNo, key)
		}
		current[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	cfg.Description = strings.Join(description, "\n")
	return cfg, nil
}

// ParseGuestLine splits a single "key: value" line.
func (p FileParser) ParseGuestLine(line string) (string, string, error) {
	m := guestKey.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", fmt.Errorf("invalid config line: %q", line)
	}
	return m[1], m[2], nil
}

// DecodeGuestJSON parses a guest configuration returned by the API. Numbers
// and booleans are converted to their stored text form; the digest is
// dropped.
func (p FileParser) DecodeGuestJSON(raw []byte) (*GuestConfig, error) {
	var envelope struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode guest config: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("decode guest config: missing data")
	}

	cfg := &GuestConfig{Values: make(map[string]string, len(envelope.Data))}
	for key, rawValue := range envelope.Data {
		if key == "digest" {
			continue
		}
		value, err := scalarString(rawValue)
		if err != nil {
			return nil, fmt.Errorf("decode guest config: key %q: %w", key, err)
		}
		if key == "description" {
			cfg.Description = value
			continue
		}
		cfg.Values[key] = value
	}
	return cfg, nil
}

func scalarString(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("unsupported value %s", strconv.Quote(string(raw)))
}
