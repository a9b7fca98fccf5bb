package constants

// CardStatus is the workflow status of a content card. The set is open: unknown
// values are kept as-is and rendered with the default style.
type CardStatus = string

const (
	StatusTodo       CardStatus = "A Fazer"
	StatusInProgress CardStatus = "Em Andamento"
	StatusCheck      CardStatus = "Check"

	// Card defaults applied by the add action
	DefaultCardTitle  = "Novo Post"
	DefaultCardType   = "Post"
	DefaultCardPillar = "Geral"
	DefaultCardStatus = StatusTodo

	// BacklogCardTitle is the title the views use for cards created in the backlog
	BacklogCardTitle = "Nova Ideia"

	// CopySuffix is appended to the title of a duplicated card
	CopySuffix = " (Cópia)"

	// DefaultLinkLabel is used when a link is added without a label
	DefaultLinkLabel = "Link"

	// Caption service
	DefaultCaptionModel  = "gemini-3-flash-preview"
	CaptionEmptyFallback = "Não foi possível gerar a legenda."
	CaptionErrorFallback = "Erro na comunicação com a inteligência artificial."

	// Environment variables
	EnvRemoteURL     = "SUPABASE_URL"
	EnvRemoteAnonKey = "SUPABASE_ANON_KEY"
	EnvCaptionKey    = "GEMINI_API_KEY"
	EnvCaptionKeyAlt = "API_KEY"
)

// Statuses lists the known statuses in workflow order.
var Statuses = []CardStatus{StatusTodo, StatusInProgress, StatusCheck}

// CardTypes lists the content formats offered by the card form.
var CardTypes = []string{"Post", "Reels", "Carrossel", "Story", "Live", "Shorts"}

// TypeIcons maps content formats to the icon shown next to a card.
var TypeIcons = map[string]string{
	"Reels":     "🎬",
	"Carrossel": "🎠",
	"Story":     "📱",
	"Live":      "🔴",
	"Post":      "🖼️",
	"Shorts":    "⚡",
}

// DefaultTypeIcon is shown for formats missing from TypeIcons.
const DefaultTypeIcon = "📄"

// NextStatus returns the status that follows s in the workflow. Unknown
// statuses restart the cycle.
func NextStatus(s CardStatus) CardStatus {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return Statuses[0]
}
