package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case Game:
		o.printGame(v)
	case GameList:
		o.printGameList(v)
	case Pick:
		o.printPick(v)
	case PickList:
		o.printPickList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResult combines user and tokens
type AuthResult struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterResult wraps the created user
type RegisterResult struct {
	User User `json:"user"`
}

// RefreshResult holds a refreshed access token
type RefreshResult struct {
	AccessToken string `json:"access_token"`
}

// Game response type
type Game struct {
	ID       string `json:"id"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Week     int    `json:"week"`
	Winner   string `json:"winner,omitempty"`
}

// GameList response type
type GameList struct {
	Games []Game `json:"games"`
}

// Pick response type
type Pick struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	Week      int       `json:"week"`
	Winner    string    `json:"winner"`
	CreatedAt time.Time `json:"created_at"`
}

// PickList response type
type PickList struct {
	Picks []Pick `json:"picks"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printUser(u User) {
	fmt.Printf("User: %s (%s)\n", u.Username, u.ID)
	fmt.Printf("Role: %s\n", u.Role)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	fmt.Println("Logged in; tokens saved")
}

func (o *Output) printGame(g Game) {
	result := "not played"
	if g.Winner != "" {
		result = g.Winner
	}
	fmt.Printf("Game: %s\n", g.ID)
	fmt.Printf("Week %d: %s vs %s\n", g.Week, g.HomeTeam, g.AwayTeam)
	fmt.Printf("Winner: %s\n", result)
}

func (o *Output) printGameList(l GameList) {
	if len(l.Games) == 0 {
		fmt.Println("No games scheduled")
		return
	}
	fmt.Printf("Games (%d):\n", len(l.Games))
	for _, g := range l.Games {
		result := ""
		if g.Winner != "" {
			result = fmt.Sprintf(" [winner: %s]", g.Winner)
		}
		fmt.Printf("  week %2d  %s vs %s%s  (%s)\n", g.Week, g.HomeTeam, g.AwayTeam, result, g.ID)
	}
}

func (o *Output) printPick(p Pick) {
	fmt.Printf("Pick: %s\n", p.ID)
	fmt.Printf("Week %d, game %s: %s\n", p.Week, p.GameID, p.Winner)
}

func (o *Output) printPickList(l PickList) {
	if len(l.Picks) == 0 {
		fmt.Println("No picks")
		return
	}
	fmt.Printf("Picks (%d):\n", len(l.Picks))
	for _, p := range l.Picks {
		fmt.Printf("  week %2d  %s  (game %s)\n", p.Week, p.Winner, p.GameID)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
