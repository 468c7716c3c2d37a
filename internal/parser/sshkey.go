package parser

import "regexp"

// SSHKey is one line of an authorized_keys file.
type SSHKey struct {
	Options string `json:"options,omitempty" yaml:"options,omitempty"`
	Type    string `json:"type" yaml:"type"`
	Key     string `json:"key" yaml:"key"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

var (
	// options may contain quoted strings with spaces.
	sshKeyLine  = regexp.MustCompile(`^(?:((?:[^\s"]|"(?:\\.|[^"\\])*")+)\s+)?(\S+)\s+(\S+)(?:\s+(.*))?$`)
	sshKeyPlain = regexp.MustCompile(`^(\S+)\s+(\S+)(?:\s+(.*))?$`)
	sshKeyType  = regexp.MustCompile(`^(?:(?:sk-)?(?:ssh-(?:dss|rsa|ed25519)|ecdsa-sha2-nistp\d+)(?:@(?:[a-z0-9_-]+\.)+[a-z]{2,})?)$`)
)

// ParseSSHKey parses an authorized_keys line. It reports false, rather than
// an error, when the line does not carry a recognised key type either as
// its first token or following an options token.
func (p Parser) ParseSSHKey(line string) (SSHKey, bool) {
	m := sshKeyLine.FindStringSubmatch(line)
	if m == nil || m[2] == "" {
		return SSHKey{}, false
	}

	if m[1] != "" && sshKeyType.MatchString(m[1]) {
		// The options group swallowed the type; the comment is everything
		// after the key.
		plain := sshKeyPlain.FindStringSubmatch(line)
		if plain == nil {
			return SSHKey{}, false
		}
		return SSHKey{Type: plain[1], Key: plain[2], Comment: plain[3]}, true
	}
	if sshKeyType.MatchString(m[2]) {
		return SSHKey{Options: m[1], Type: m[2], Key: m[3], Comment: m[4]}, true
	}
	return SSHKey{}, false
}

// PrintSSHKey renders k as an authorized_keys line.
func (p Parser) PrintSSHKey(k SSHKey) string {
	s := k.Type + " " + k.Key
	if k.Options != "" {
		s = k.Options + " " + s
	}
	if k.Comment != "" {
		s += " " + k.Comment
	}
	return s
}
