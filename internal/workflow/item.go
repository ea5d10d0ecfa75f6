package workflow

// Icon selects one of the fixed result icons. Paths are resolved at
// serialization time.
type Icon int

const (
	IconDefault Icon = iota
	IconPhonetic
)

// Path returns the asset path the launcher loads for the icon.
func (i Icon) Path() string {
	switch i {
	case IconPhonetic:
		return "assets/translate-say.png"
	default:
		return "assets/translate.png"
	}
}

// Modifier names the key that triggers a secondary action.
type Modifier string

const (
	ModCtrl Modifier = "ctrl"
	ModCmd  Modifier = "cmd"
	ModAlt  Modifier = "alt"
)

// copyLabel is the subtitle of the copy-to-clipboard action.
const copyLabel = "复制到剪贴板"

// Payload is the two-part value carried by every item: Term is what gets
// spoken or re-queried, Content is what gets copied.
type Payload struct {
	Term    string
	Content string
}

// NewPayload builds a payload.
func NewPayload(term, content string) Payload {
	return Payload{Term: term, Content: content}
}

// Mod is a secondary action bound to a modifier key.
type Mod struct {
	Key      Modifier
	Subtitle string
	Arg      string
	Valid    bool
}

// Item is one selectable entry of the result list.
type Item struct {
	Title        string
	Subtitle     string
	Payload      Payload
	Icon         Icon
	Mods         []Mod
	QuickLookURL string
	Autocomplete string
	Valid        bool
}

// ItemOption customizes an Item before it is appended.
type ItemOption func(*Item)

// WithIcon sets the item icon.
func WithIcon(icon Icon) ItemOption {
	return func(it *Item) { it.Icon = icon }
}

// WithQuickLook sets the URL previewed by the launcher.
func WithQuickLook(u string) ItemOption {
	return func(it *Item) { it.QuickLookURL = u }
}

// WithAutocomplete sets the text the launcher puts in the query box on tab.
func WithAutocomplete(s string) ItemOption {
	return func(it *Item) { it.Autocomplete = s }
}

// Invalid marks the item as displayed but not actionable.
func Invalid() ItemOption {
	return func(it *Item) { it.Valid = false }
}

// defaultMods returns the speak, speak and copy actions for a payload.
func defaultMods(p Payload) []Mod {
	return []Mod{
		{Key: ModCtrl, Subtitle: "📣 " + p.Term, Arg: p.Term, Valid: true},
		{Key: ModCmd, Subtitle: "🔊 " + p.Term, Arg: p.Term, Valid: true},
		{Key: ModAlt, Subtitle: copyLabel, Arg: p.Content, Valid: true},
	}
}

// Mod returns the secondary action bound to key.
func (it Item) Mod(key Modifier) (Mod, bool) {
	for _, m := range it.Mods {
		if m.Key == key {
			return m, true
		}
	}
	return Mod{}, false
}

func (it Item) fields() object {
	mods := make(object, 0, len(it.Mods))
	for _, m := range it.Mods {
		mods = append(mods, field{key: string(m.Key), value: object{
			{key: "subtitle", value: m.Subtitle},
			{key: "arg", value: m.Arg},
			{key: "valid", value: m.Valid},
		}})
	}
	return object{
		{key: "title", value: it.Title},
		{key: "subtitle", value: it.Subtitle},
		{key: "arg", value: it.Payload.Term},
		{key: "icon", value: object{{key: "path", value: it.Icon.Path()}}},
		{key: "mods", value: mods},
		{key: "quicklookurl", value: it.QuickLookURL},
		{key: "autocomplete", value: it.Autocomplete},
		{key: "valid", value: it.Valid},
	}
}
