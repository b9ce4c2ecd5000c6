package database

import (
	"fmt"
	"log"
	"time"

	"github.com/codyseavey/card-pricer/internal/models"
	"gorm.io/gorm"
)

type seedCard struct {
	name      string
	setNumber string
	rarity    models.Rarity
	hp        int
	cardType  string
}

// baseSetSeed is the 1999 Base Set reference data used to bootstrap an
// empty catalog. Production deployments import full set data on top of
// it; the seed keeps a fresh install able to identify the cards people
// actually scan first.
var baseSetSeed = []seedCard{
	{"Alakazam", "1/102", models.RarityHoloRare, 80, "Psychic"},
	{"Blastoise", "2/102", models.RarityHoloRare, 100, "Water"},
	{"Chansey", "3/102", models.RarityHoloRare, 120, "Colorless"},
	{"Charizard", "4/102", models.RarityHoloRare, 120, "Fire"},
	{"Clefairy", "5/102", models.RarityHoloRare, 40, "Colorless"},
	{"Gyarados", "6/102", models.RarityHoloRare, 100, "Water"},
	{"Hitmonchan", "7/102", models.RarityHoloRare, 70, "Fighting"},
	{"Machamp", "8/102", models.RarityHoloRare, 100, "Fighting"},
	{"Magneton", "9/102", models.RarityHoloRare, 60, "Lightning"},
	{"Mewtwo", "10/102", models.RarityHoloRare, 60, "Psychic"},
	{"Nidoking", "11/102", models.RarityHoloRare, 90, "Grass"},
	{"Ninetales", "12/102", models.RarityHoloRare, 80, "Fire"},
	{"Poliwrath", "13/102", models.RarityHoloRare, 90, "Water"},
	{"Raichu", "14/102", models.RarityHoloRare, 80, "Lightning"},
	{"Venomoth", "15/102", models.RarityHoloRare, 70, "Grass"},
	{"Venusaur", "16/102", models.RarityHoloRare, 100, "Grass"},
	{"Beedrill", "17/102", models.RarityRare, 80, "Grass"},
	{"Dragonair", "18/102", models.RarityRare, 80, "Colorless"},
	{"Dugtrio", "19/102", models.RarityRare, 70, "Fighting"},
	{"Electabuzz", "20/102", models.RarityRare, 65, "Lightning"},
	{"Electrode", "21/102", models.RarityRare, 80, "Lightning"},
	{"Pidgeotto", "22/102", models.RarityRare, 60, "Colorless"},
	{"Arcanine", "23/102", models.RarityUncommon, 100, "Fire"},
	{"Charmeleon", "24/102", models.RarityUncommon, 80, "Fire"},
	{"Dewgong", "25/102", models.RarityUncommon, 80, "Water"},
	{"Dratini", "26/102", models.RarityUncommon, 41, "Colorless"},
	{"Farfetch'd", "27/102", models.RarityUncommon, 50, "Colorless"},
	{"Growlithe", "28/102", models.RarityUncommon, 60, "Fire"},
	{"Haunter", "29/102", models.RarityUncommon, 45, "Psychic"},
	{"Ivysaur", "30/102", models.RarityUncommon, 60, "Grass"},
	{"Jynx", "31/102", models.RarityUncommon, 70, "Psychic"},
	{"Kadabra", "32/102", models.RarityUncommon, 60, "Psychic"},
	{"Kakuna", "33/102", models.RarityUncommon, 80, "Grass"},
	{"Machoke", "34/102", models.RarityUncommon, 80, "Fighting"},
	{"Magikarp", "35/102", models.RarityUncommon, 30, "Water"},
	{"Magmar", "36/102", models.RarityUncommon, 50, "Fire"},
	{"Nidorino", "37/102", models.RarityUncommon, 60, "Grass"},
	{"Poliwhirl", "38/102", models.RarityUncommon, 60, "Water"},
	{"Porygon", "39/102", models.RarityUncommon, 30, "Colorless"},
	{"Raticate", "40/102", models.RarityUncommon, 60, "Colorless"},
	{"Seel", "41/102", models.RarityUncommon, 60, "Water"},
	{"Wartortle", "42/102", models.RarityUncommon, 80, "Water"},
	{"Abra", "43/102", models.RarityCommon, 30, "Psychic"},
	{"Bulbasaur", "44/102", models.RarityCommon, 40, "Grass"},
	{"Caterpie", "45/102", models.RarityCommon, 40, "Grass"},
	{"Charmander", "46/102", models.RarityCommon, 50, "Fire"},
	{"Diglett", "47/102", models.RarityCommon, 30, "Fighting"},
	{"Doduo", "48/102", models.RarityCommon, 50, "Colorless"},
	{"Drowzee", "49/102", models.RarityCommon, 50, "Psychic"},
	{"Gastly", "50/102", models.RarityCommon, 30, "Psychic"},
	{"Koffing", "51/102", models.RarityCommon, 50, "Grass"},
	{"Machop", "52/102", models.RarityCommon, 50, "Fighting"},
	{"Magnemite", "53/102", models.RarityCommon, 40, "Lightning"},
	{"Metapod", "54/102", models.RarityCommon, 70, "Grass"},
	{"Nidoran", "55/102", models.RarityCommon, 40, "Grass"},
	{"Onix", "56/102", models.RarityCommon, 90, "Fighting"},
	{"Pidgey", "57/102", models.RarityCommon, 40, "Colorless"},
	{"Pikachu", "58/102", models.RarityCommon, 40, "Lightning"},
	{"Poliwag", "59/102", models.RarityCommon, 50, "Water"},
	{"Ponyta", "60/102", models.RarityCommon, 40, "Fire"},
	{"Rattata", "61/102", models.RarityCommon, 30, "Colorless"},
	{"Sandshrew", "62/102", models.RarityCommon, 40, "Fighting"},
	{"Squirtle", "63/102", models.RarityCommon, 40, "Water"},
	{"Starmie", "64/102", models.RarityCommon, 60, "Water"},
	{"Staryu", "65/102", models.RarityCommon, 40, "Water"},
	{"Tangela", "66/102", models.RarityCommon, 50, "Grass"},
	{"Voltorb", "67/102", models.RarityCommon, 40, "Lightning"},
	{"Vulpix", "68/102", models.RarityCommon, 50, "Fire"},
	{"Weedle", "69/102", models.RarityCommon, 40, "Grass"},
}

// SeedIfEmpty loads the Base Set reference cards into an empty cards
// table. A table with any rows is left alone.
func SeedIfEmpty(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Card{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count cards: %w", err)
	}
	if count > 0 {
		return nil
	}

	released := time.Date(1999, time.January, 9, 0, 0, 0, 0, time.UTC)
	cards := make([]models.Card, len(baseSetSeed))
	for i, s := range baseSetSeed {
		hp := s.hp
		cards[i] = models.Card{
			Name:        s.name,
			SetName:     "Base Set",
			SetNumber:   s.setNumber,
			Rarity:      s.rarity,
			HP:          &hp,
			CardType:    s.cardType,
			ReleaseDate: &released,
		}
	}

	if err := db.Create(&cards).Error; err != nil {
		return fmt.Errorf("seed cards: %w", err)
	}
	log.Printf("Seeded %d Base Set cards", len(cards))
	return nil
}

// LoadCards returns every card in the store, ordered by id so catalog
// iteration order is stable across restarts.
func LoadCards(db *gorm.DB) ([]models.Card, error) {
	var cards []models.Card
	if err := db.Order("id").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}
	return cards, nil
}
