package services

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/apperr"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/models"
)

// defaultRate applies to pairs missing from the table unless the service is strict.
var defaultRate = decimal.NewFromInt(1)

// Rate is one entry of the conversion table.
type Rate struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
}

// ConversionServiceProvider defines the interface for the conversion simulator.
type ConversionServiceProvider interface {
	Convert(req models.ConversionRequest) (models.Conversion, error)
	Rates() []Rate
}

// ConversionService simulates currency conversion from a static rate table.
type ConversionService struct {
	rates  map[string]decimal.Decimal
	strict bool
}

// NewConversionService creates a simulator from a table keyed "FROM>TO". When strict
// is set, pairs missing from the table are rejected instead of converting at parity.
func NewConversionService(rates map[string]float64, strict bool) *ConversionService {
	table := make(map[string]decimal.Decimal, len(rates))
	for pair, r := range rates {
		table[strings.ToUpper(pair)] = decimal.NewFromFloat(r)
	}
	return &ConversionService{rates: table, strict: strict}
}

// Convert validates req and returns the simulated output rounded to two decimals,
// half away from zero.
func (s *ConversionService) Convert(req models.ConversionRequest) (models.Conversion, error) {
	from := strings.ToUpper(strings.TrimSpace(req.From))
	to := strings.ToUpper(strings.TrimSpace(req.To))

	if from == "" || to == "" || req.Amount.IsZero() {
		return models.Conversion{}, apperr.Invalid("from, to, amount are required")
	}
	if req.Amount.IsNegative() {
		return models.Conversion{}, apperr.Invalid("amount must be positive")
	}
	if from == to {
		return models.Conversion{}, apperr.Invalid("from and to must differ")
	}

	rate, ok := s.rates[from+">"+to]
	if !ok {
		if s.strict {
			return models.Conversion{}, apperr.Invalid("unsupported currency pair " + from + ">" + to)
		}
		rate = defaultRate
	}

	return models.Conversion{
		From:      from,
		To:        to,
		AmountIn:  req.Amount,
		Rate:      rate,
		AmountOut: req.Amount.Mul(rate).Round(2),
	}, nil
}

// Rates lists the configured table sorted by pair.
func (s *ConversionService) Rates() []Rate {
	out := make([]Rate, 0, len(s.rates))
	for pair, r := range s.rates {
		from, to, _ := strings.Cut(pair, ">")
		out = append(out, Rate{From: from, To: to, Rate: r.InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}
