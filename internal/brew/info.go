package brew

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Manifest is the subset of `brew info --json=v2` output used by brewq.
type Manifest struct {
	Casks    []CaskInfo    `json:"casks"`
	Formulae []FormulaInfo `json:"formulae"`
}

// CaskInfo is one entry of the "casks" array.
// Example: `brew info --json=v2 google-chrome | jq '.casks[0]'`
type CaskInfo struct {
	Token    string `json:"token"`
	Desc     string `json:"desc"`
	Homepage string `json:"homepage"`
	Outdated bool   `json:"outdated"`
	Disabled bool   `json:"disabled"`
	// Installed holds the installed version, or null.
	Installed json.RawMessage `json:"installed"`
}

// FormulaInfo is one entry of the "formulae" array.
// Example: `brew info --json=v2 xz | jq '.formulae[0]'`
type FormulaInfo struct {
	Name     string `json:"name"`
	Desc     string `json:"desc"`
	Homepage string `json:"homepage"`
	Outdated bool   `json:"outdated"`
	Disabled bool   `json:"disabled"`
	// Installed lists one object per installed keg; empty when not installed.
	Installed []json.RawMessage `json:"installed"`
}

// IsInstalled reports whether the cask carries a non-null installed value.
func (c CaskInfo) IsInstalled() bool {
	v := bytes.TrimSpace(c.Installed)
	return len(v) > 0 && !bytes.Equal(v, []byte("null"))
}

// IsInstalled reports whether at least one keg of the formula is installed.
func (f FormulaInfo) IsInstalled() bool {
	return len(f.Installed) > 0
}

// ParseInfo decodes `brew info --json=v2` output.
func ParseInfo(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid brew info JSON: %w", err)
	}
	return &m, nil
}

// Cask returns the cask whose token equals name.
func (m *Manifest) Cask(name string) (CaskInfo, bool) {
	for _, c := range m.Casks {
		if c.Token == name {
			return c, true
		}
	}
	return CaskInfo{}, false
}

// Formula returns the formula whose name equals name.
func (m *Manifest) Formula(name string) (FormulaInfo, bool) {
	for _, f := range m.Formulae {
		if f.Name == name {
			return f, true
		}
	}
	return FormulaInfo{}, false
}
