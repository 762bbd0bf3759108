package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kamusis/brewq/internal/brew"
)

// Kind is the catalog a package comes from.
type Kind int

const (
	Formula Kind = iota
	Cask
)

func (k Kind) String() string {
	if k == Cask {
		return "Cask"
	}
	return "Formula"
}

func (k Kind) prefix() string {
	if k == Cask {
		return "c."
	}
	return "f."
}

func (k Kind) infoURL(name string) string {
	if k == Cask {
		return "https://formulae.brew.sh/cask/" + name
	}
	return "https://formulae.brew.sh/formula/" + name
}

// Detail is the parsed brew info for one package.
type Detail struct {
	Kind      Kind
	Name      string
	Desc      string
	Homepage  string
	Installed bool
	Outdated  bool
	Disabled  bool
}

// CaskDetail classifies a cask entry. Casks are installed iff their
// installed field is non-null.
func CaskDetail(c brew.CaskInfo) Detail {
	return Detail{
		Kind:      Cask,
		Name:      c.Token,
		Desc:      c.Desc,
		Homepage:  c.Homepage,
		Installed: c.IsInstalled(),
		Outdated:  c.Outdated,
		Disabled:  c.Disabled,
	}
}

// FormulaDetail classifies a formula entry. Formulae are installed iff their
// installed array is non-empty.
func FormulaDetail(f brew.FormulaInfo) Detail {
	return Detail{
		Kind:      Formula,
		Name:      f.Name,
		Desc:      f.Desc,
		Homepage:  f.Homepage,
		Installed: f.IsInstalled(),
		Outdated:  f.Outdated,
		Disabled:  f.Disabled,
	}
}

// ID is the kind-prefixed name; casks and formulae never share an ID.
func (d Detail) ID() string { return d.Kind.prefix() + d.Name }

const subtextSep = " · "

// Subtext joins the kind label, status tokens and description.
func (d Detail) Subtext() string {
	tokens := []string{d.Kind.String()}
	if d.Installed {
		tokens = append(tokens, "Installed")
	}
	if d.Outdated {
		tokens = append(tokens, "Outdated")
	}
	if d.Disabled {
		tokens = append(tokens, "DISABLED")
	}
	if d.Desc != "" {
		tokens = append(tokens, d.Desc)
	}
	return strings.Join(tokens, subtextSep)
}

// Icon picks the badge: disabled, then outdated, then installed.
func (d Detail) Icon() Icon {
	switch {
	case d.Disabled:
		return IconDisabled
	case d.Outdated:
		return IconOutdated
	case d.Installed:
		return IconInstalled
	default:
		return IconDefault
	}
}

// Icon is the visual state of an item.
type Icon int

const (
	IconDefault Icon = iota
	IconInstalled
	IconOutdated
	IconDisabled
	IconUpdate
)

var iconNames = [...]string{"default", "installed", "outdated", "disabled", "update"}

func (i Icon) String() string {
	if int(i) < len(iconNames) {
		return iconNames[i]
	}
	return fmt.Sprintf("Icon(%d)", int(i))
}

func (i Icon) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

// Badge renders the icon as graphemes.
func (i Icon) Badge() string {
	switch i {
	case IconInstalled:
		return "📦✅"
	case IconOutdated:
		return "📦⚠️"
	case IconDisabled:
		return "📦🛑"
	case IconUpdate:
		return "📦⬆️"
	}
	return "📦"
}

// Action is something the host can do with an item.
type Action struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	run   func() error
}

// Run performs the action.
func (a Action) Run() error {
	if a.run == nil {
		return fmt.Errorf("action %q has no handler", a.ID)
	}
	return a.run()
}

// Item is one result. Items are immutable once built.
type Item struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Subtext string   `json:"subtext"`
	Icon    Icon     `json:"icon"`
	Actions []Action `json:"actions"`
}

// Action returns the action with the given ID.
func (it Item) Action(id string) (Action, bool) {
	for _, a := range it.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// Launcher opens terminals and URLs on behalf of item actions.
type Launcher interface {
	RunTerminal(script string) error
	OpenURL(url string) error
}

func (h *Handler) packageItem(d Detail) Item {
	brewCmd, name := shellQuote(h.brew), shellQuote(d.Name)
	var actions []Action
	if !d.Disabled {
		if d.Installed {
			actions = append(actions, Action{ID: "uninstall", Label: "Uninstall", run: func() error {
				return h.launcher.RunTerminal(fmt.Sprintf("%s uninstall %s || exec $SHELL", brewCmd, name))
			}})
		} else {
			actions = append(actions, Action{ID: "install", Label: "Install", run: func() error {
				return h.launcher.RunTerminal(fmt.Sprintf("%s install %s || exec $SHELL", brewCmd, name))
			}})
		}
	}
	actions = append(actions, Action{ID: "info_local", Label: "Info (Terminal)", run: func() error {
		return h.launcher.RunTerminal(fmt.Sprintf("%s info %s ; exec $SHELL", brewCmd, name))
	}})
	if d.Homepage != "" {
		homepage := d.Homepage
		actions = append(actions, Action{ID: "homepage", Label: "Project homepage", run: func() error {
			return h.launcher.OpenURL(homepage)
		}})
	}
	infoURL := d.Kind.infoURL(d.Name)
	actions = append(actions, Action{ID: "info_online", Label: "Info (Browser)", run: func() error {
		return h.launcher.OpenURL(infoURL)
	}})

	return Item{
		ID:      d.ID(),
		Text:    d.Name,
		Subtext: d.Subtext(),
		Icon:    d.Icon(),
		Actions: actions,
	}
}

// UpdateItemID identifies the "update and upgrade" shortcut.
const UpdateItemID = "update"

func (h *Handler) updateItem() Item {
	brewCmd := shellQuote(h.brew)
	return Item{
		ID:      UpdateItemID,
		Text:    "Update",
		Subtext: "Update and upgrade.",
		Icon:    IconUpdate,
		Actions: []Action{{ID: "update", Label: "Update", run: func() error {
			return h.launcher.RunTerminal(fmt.Sprintf("%s update && %s upgrade", brewCmd, brewCmd))
		}}},
	}
}

var shellSafe = regexp.MustCompile(`^[A-Za-z0-9@%+=:,./_-]+$`)

func shellQuote(s string) string {
	if shellSafe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
