package player

import (
	"fmt"

	"github.com/jmcvetta/randutil"

	"github.com/popqiz/popqiz/go/internal/models"
)

// TeamColors is the display palette. Values are stable identifiers the
// client maps to hex colors.
var TeamColors = []string{
	"yellow", "teal", "red", "orange", "light-blue", "pink", "lime", "white",
}

// TeamNames are assigned at join so nobody has to type a name on a
// phone keyboard.
var TeamNames = []string{
	"Team Thunderbolts", "Team Starlights", "Team Fireflies", "Team Moonbeams",
	"Team Sunbeams", "Team Comets", "Team Nebulas", "Team Galaxies",
	"Team Meteors", "Team Auroras", "Team Phoenix", "Team Dragons",
	"Team Warriors", "Team Champions", "Team Legends", "Team Titans",
	"Team Eagles", "Team Lions", "Team Sharks", "Team Wolves",
	"Team Panthers", "Team Falcons", "Team Hawks", "Team Ravens",
	"Team Owls", "Team Bears", "Team Tigers", "Team Jaguars",
	"Team Cheetahs", "Team Leopards", "Team Rhinos", "Team Elephants",
	"Team Giraffes", "Team Zebras", "Team Monkeys", "Team Gorillas",
	"Team Pandas", "Team Koalas", "Team Penguins", "Team Dolphins",
	"Team Whales", "Team Orcas", "Team Seals", "Team Otters",
	"Team Beavers", "Team Squirrels", "Team Rabbits", "Team Foxes",
	"Team Badgers", "Team Raccoons", "Team Chipmunks", "Team Hedgehogs",
	"Team Sloths", "Team Anteaters", "Team Armadillos", "Team Kangaroos",
	"Team Wallabies", "Team Wombats", "Team Platypus", "Team Emus",
	"Team Ostriches", "Team Flamingos", "Team Peacocks", "Team Parrots",
	"Team Toucans", "Team Hummingbirds", "Team Robins", "Team Bluebirds",
	"Team Cardinals", "Team Finches", "Team Sparrows", "Team Kingfishers",
	"Team Woodpeckers", "Team Magpies", "Team Crows", "Team Jays",
	"Team Mockingbirds", "Team Wrens", "Team Thrushes", "Team Larks",
	"Team Canaries", "Team Doves", "Team Pigeons", "Team Starlings",
	"Team Grackles", "Team Orioles", "Team Tanagers", "Team Warblers",
	"Team Vireos", "Team Flycatchers", "Team Chickadees", "Team Buntings",
	"Team Gnatcatchers", "Team Kinglets", "Team Waxwings", "Team Herons",
	"Team Egrets", "Team Pelicans", "Team Cormorants", "Team Gulls",
}

// AssignTeam picks a color and name for a new player, avoiding ones
// already used in the room. When the palette is exhausted colors repeat
// and names get a numbered variant.
func AssignTeam(existing []models.Player) (name, color string, err error) {
	usedColors := make(map[string]bool, len(existing))
	usedNames := make(map[string]bool, len(existing))
	for _, p := range existing {
		usedColors[p.TeamColor] = true
		usedNames[p.TeamName] = true
	}

	var freeColors []string
	for _, c := range TeamColors {
		if !usedColors[c] {
			freeColors = append(freeColors, c)
		}
	}
	if len(freeColors) == 0 {
		freeColors = TeamColors
	}
	color, err = randutil.ChoiceString(freeColors)
	if err != nil {
		return "", "", fmt.Errorf("failed to pick team color: %w", err)
	}

	var freeNames []string
	for _, n := range TeamNames {
		if !usedNames[n] {
			freeNames = append(freeNames, n)
		}
	}
	if len(freeNames) > 0 {
		name, err = randutil.ChoiceString(freeNames)
		if err != nil {
			return "", "", fmt.Errorf("failed to pick team name: %w", err)
		}
		return name, color, nil
	}

	// Every base name is taken; suffix a number until one is free.
	base, err := randutil.ChoiceString(TeamNames)
	if err != nil {
		return "", "", fmt.Errorf("failed to pick team name: %w", err)
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s %d", base, i)
		if !usedNames[candidate] {
			return candidate, color, nil
		}
	}
}
