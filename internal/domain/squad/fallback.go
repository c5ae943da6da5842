package squad

import "github.com/okian/dreamxi/internal/domain/model"

// FallbackLabel names the built-in opponent.
const FallbackLabel = "Bot XI"

var fallbackPlayers = []model.Player{
	{ID: "fb_alisson", Name: "Alisson Becker", Position: "GK", Rating: 90},
	{ID: "fb_ederson", Name: "Ederson", Position: "GK", Rating: 88},
	{ID: "fb_vvd", Name: "Virgil van Dijk", Position: "DEF", Rating: 91},
	{ID: "fb_ruben_dias", Name: "Ruben Dias", Position: "DEF", Rating: 89},
	{ID: "fb_trent", Name: "Trent Alexander-Arnold", Position: "DEF", Rating: 88},
	{ID: "fb_robertson", Name: "Andy Robertson", Position: "DEF", Rating: 87},
	{ID: "fb_rodri", Name: "Rodri", Position: "MID", Rating: 90},
	{ID: "fb_kdb", Name: "Kevin De Bruyne", Position: "MID", Rating: 92},
	{ID: "fb_bruno", Name: "Bruno Fernandes", Position: "MID", Rating: 88},
	{ID: "fb_salah", Name: "Mohamed Salah", Position: "FWD", Rating: 92},
	{ID: "fb_haaland", Name: "Erling Haaland", Position: "FWD", Rating: 93},
	{ID: "fb_saka", Name: "Bukayo Saka", Position: "FWD", Rating: 88},
}

// FallbackPlayers returns up to limit players of the built-in opponent
// roster. A non-positive limit returns the whole roster.
func FallbackPlayers(limit int) []model.Player {
	if limit <= 0 || limit > len(fallbackPlayers) {
		limit = len(fallbackPlayers)
	}
	out := make([]model.Player, limit)
	copy(out, fallbackPlayers[:limit])
	return out
}

// FallbackTeam returns the normalized built-in opponent.
func FallbackTeam() *model.Team {
	return Normalize(FallbackPlayers(0), FallbackLabel)
}
