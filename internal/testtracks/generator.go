package testtracks

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/cascade/internal/adapters/source"
	"github.com/okian/cascade/internal/domain/model"
)

// Row layout written for every record. Positions follow source.DefaultSchema.
const (
	columnNumber = iota
	columnPriority
	columnConsent
	columnKind
	columnScores
	columnSum
	columnStatus
	columnID
	columnCount
)

const (
	maxScore         = 100
	withdrawalMarker = "Забрал документы"
	consentGiven     = "Да"
	budgetKind       = "Бюджет"
)

// Header is the first row of every generated file.
var Header = []string{"№", "Приоритет", "Согласие", "Основание", "Баллы", "Сумма", "Статус", "СНИЛС"}

// Generate builds a fixture from cfg. The result depends only on cfg.
func Generate(cfg Config) (Fixture, error) {
	if cfg.Tracks < 1 || cfg.Applicants < 1 {
		return Fixture{}, fmt.Errorf("need at least one track and one applicant, got %d and %d", cfg.Tracks, cfg.Applicants)
	}
	if cfg.MinCapacity < 0 || cfg.MaxCapacity < cfg.MinCapacity {
		return Fixture{}, fmt.Errorf("invalid capacity range [%d, %d]", cfg.MinCapacity, cfg.MaxCapacity)
	}
	choices := min(max(cfg.MaxChoices, 1), cfg.Tracks)

	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], cfg.Seed)
	src := rand.NewChaCha8(seed)
	rng := rand.New(src)

	fx := Fixture{
		Tracks:     make([]model.Track, cfg.Tracks),
		Capacities: make([]int, cfg.Tracks),
	}
	for i := range fx.Tracks {
		fx.Tracks[i].Source = fmt.Sprintf("track_%02d.csv", i+1)
		fx.Capacities[i] = cfg.MinCapacity + rng.IntN(cfg.MaxCapacity-cfg.MinCapacity+1)
	}

	for a := 0; a < cfg.Applicants; a++ {
		id, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return Fixture{}, fmt.Errorf("applicant id: %w", err)
		}
		if a == 0 {
			fx.MyID = id.String()
		}
		scores := randomScores(rng)
		picks := rng.Perm(cfg.Tracks)[:1+rng.IntN(choices)]
		for p, t := range picks {
			rec := model.ApplicantRecord{ID: id.String(), Priority: p + 1, Scores: scores}
			withdrawn := rng.Float64() < cfg.WithdrawRate
			if withdrawn {
				rec.Scores = model.Scores{}
			}
			rec.Raw = row(rec, withdrawn)
			fx.Tracks[t].Records = append(fx.Tracks[t].Records, rec)
		}
	}

	for i := range fx.Tracks {
		recs := fx.Tracks[i].Records
		rng.Shuffle(len(recs), func(a, b int) { recs[a], recs[b] = recs[b], recs[a] })
		for n := range recs {
			recs[n].Raw[columnNumber] = strconv.Itoa(n + 1)
		}
	}
	return fx, nil
}

func randomScores(rng *rand.Rand) model.Scores {
	var s model.Scores
	for i := range s {
		s[i] = rng.IntN(maxScore + 1)
	}
	return s
}

func row(rec model.ApplicantRecord, withdrawn bool) []string {
	r := make([]string, columnCount)
	r[columnPriority] = strconv.Itoa(rec.Priority)
	r[columnConsent] = consentGiven
	r[columnKind] = budgetKind
	if withdrawn {
		r[columnScores] = withdrawalMarker
	} else {
		parts := make([]string, len(rec.Scores))
		for i, v := range rec.Scores {
			parts[i] = strconv.Itoa(v)
		}
		r[columnScores] = strings.Join(parts, " ")
	}
	r[columnSum] = strconv.Itoa(rec.Scores.Sum())
	r[columnStatus] = source.DefaultActiveStatus
	r[columnID] = rec.ID
	return r
}
