package consensus

import (
	"time"

	"github.com/XavierBriggs/Pythia/pkg/models"
)

// Selection is the consensus line of a bucket and the prices quoted on it
type Selection struct {
	Line        float64
	OverByBook  map[string]int
	UnderByBook map[string]int
	BestOver    *models.BestPrice
	BestUnder   *models.BestPrice
	BookCount   int
}

// ConsensusLine returns the ladder line quoted by the most distinct books.
// Ties go to the lowest line. ok is false for an empty ladder.
func ConsensusLine(ladder map[float64]*models.LadderRung) (line float64, ok bool) {
	best := -1
	for l, rung := range ladder {
		n := rung.BookCount()
		if n > best || (n == best && l < line) {
			line, best = l, n
		}
	}
	return line, best >= 0
}

// BestPrice returns the algebraically greatest price in byBook, which in
// American odds is the most favorable for the bettor on either sign. Ties go
// to the lexicographically smallest book. nil when byBook is empty.
func BestPrice(byBook map[string]int) *models.BestPrice {
	var best *models.BestPrice
	for book, price := range byBook {
		if best == nil || price > best.Price || (price == best.Price && book < best.Book) {
			best = &models.BestPrice{Price: price, Book: book}
		}
	}
	return best
}

// Select picks the consensus line of a bucket and the best price per side on it
func Select(bucket *models.PropBucket) (Selection, bool) {
	line, ok := ConsensusLine(bucket.Ladder)
	if !ok {
		return Selection{}, false
	}

	rung := bucket.Ladder[line]
	sel := Selection{
		Line:        line,
		OverByBook:  copyPrices(rung.Over),
		UnderByBook: copyPrices(rung.Under),
		BookCount:   rung.BookCount(),
	}
	sel.BestOver = BestPrice(sel.OverByBook)
	sel.BestUnder = BestPrice(sel.UnderByBook)

	return sel, true
}

// Build assembles the persisted record for a resolved bucket
func Build(game models.Game, player models.PlayerIdentity, bucket *models.PropBucket, sel Selection, now time.Time) models.ConsensusRecord {
	mainLines := make(map[string]float64, len(bucket.MainLineByBook))
	for book, line := range bucket.MainLineByBook {
		mainLines[book] = line
	}

	ladder := make([]models.LadderEntry, 0, len(bucket.Ladder))
	for _, line := range bucket.Lines() {
		rung := bucket.Ladder[line]
		ladder = append(ladder, models.LadderEntry{
			Line:  line,
			Over:  copyPrices(rung.Over),
			Under: copyPrices(rung.Under),
		})
	}

	return models.ConsensusRecord{
		GameID:              game.ID,
		EventID:             game.ExternalID,
		PlayerID:            player.ID,
		PlayerName:          player.Name,
		SportKey:            game.SportKey,
		StatType:            bucket.StatType,
		ConsensusLine:       sel.Line,
		MainLineByBook:      mainLines,
		MainOverOddsByBook:  sel.OverByBook,
		MainUnderOddsByBook: sel.UnderByBook,
		BestOver:            sel.BestOver,
		BestUnder:           sel.BestUnder,
		Ladder:              ladder,
		BookCount:           sel.BookCount,
		UpdatedAt:           now,
	}
}

func copyPrices(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
