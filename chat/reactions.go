package chat

// Reaction は定型リアクションです。シアターのスクイーズ操作で順に送信されます。
type Reaction struct {
	Label string
	Body  string
}

// Reactions は定型リアクションの固定リストを返します。
func Reactions() []Reaction {
	return []Reaction{
		{Label: "Wave", Body: "*wave*"},
		{Label: "Clap", Body: "*clap*"},
		{Label: "Cheer", Body: "*cheer*"},
		{Label: "Encore", Body: "*encore*"},
	}
}
