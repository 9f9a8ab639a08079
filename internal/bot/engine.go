package bot

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"scrapbot/internal/catalog"
)

// BookingSink receives a finished booking record for durable storage.
type BookingSink interface {
	Submit(ctx context.Context, rec BookingRecord) error
}

// Reply is one outbound turn. Image is an optional reference shown alongside
// the text.
type Reply struct {
	Text  string
	Image string
}

// Engine runs the dialogue state machine. It owns input validation, price
// arithmetic and booking-record construction; transports own nothing but
// message delivery.
type Engine struct {
	catalog  *catalog.Catalog
	agents   []Agent
	sink     BookingSink
	logger   *zap.Logger
	handlers map[Step]func(context.Context, *Session, string) Reply
}

func NewEngine(cat *catalog.Catalog, agents []Agent, sink BookingSink, logger *zap.Logger) *Engine {
	e := &Engine{
		catalog: cat,
		agents:  agents,
		sink:    sink,
		logger:  logger,
	}
	e.registerHandlers()
	return e
}

func (e *Engine) registerHandlers() {
	e.handlers = map[Step]func(context.Context, *Session, string) Reply{
		StepStart:          e.handleStart,
		StepAskScrapType:   e.handleScrapType,
		StepAskQuantity:    e.handleQuantity,
		StepAskName:        e.handleName,
		StepAskPhone:       e.handlePhone,
		StepAskEmail:       e.handleEmail,
		StepAskAddress:     e.handleAddress,
		StepAskPincode:     e.handlePincode,
		StepConfirmBooking: e.handleConfirm,
		StepAskTimeSlot:    e.handleTimeSlot,
		StepAddressChange:  e.handleAddressChange,
		StepThankYou:       e.handleThankYou,
	}
}

// Handle runs one dialogue turn. The session is mutated in place; the caller
// persists it after the turn returns.
func (e *Engine) Handle(ctx context.Context, s *Session, input string) Reply {
	if s.Step == "" {
		s.Step = StepStart
	}

	handler, ok := e.handlers[s.Step]
	if !ok {
		e.logger.Warn("Unknown dialogue step, resetting session",
			zap.String("step", string(s.Step)))
		s.Reset()
		return Reply{Text: msgStartOver}
	}

	return handler(ctx, s, strings.TrimSpace(input))
}

func (e *Engine) handleStart(_ context.Context, s *Session, input string) Reply {
	switch {
	case isYes(input):
		s.Step = StepAskScrapType
		return Reply{Text: msgAskScrapType}
	case isNo(input):
		return Reply{Text: msgDeclined}
	default:
		return Reply{Text: msgYesNo}
	}
}

func (e *Engine) handleScrapType(_ context.Context, s *Session, input string) Reply {
	entry, score := e.catalog.Lookup(input)
	if score <= catalog.MatchThreshold {
		e.logger.Debug("No material match",
			zap.String("input", input),
			zap.Int("score", score))
		return Reply{Text: msgNotFound}
	}

	s.ScrapType = entry.Name
	s.Price = entry.Price
	s.Unit = entry.Unit
	s.Step = StepAskQuantity
	return Reply{
		Text:  formatPriceQuote(entry.Name, entry.Price, entry.Unit),
		Image: entry.ImageURL,
	}
}

func (e *Engine) handleQuantity(_ context.Context, s *Session, input string) Reply {
	// ParseFloat also accepts "NaN" and "±Inf"; those would poison the JSON
	// session state, so they count as rejected input like any other non-number.
	quantity, err := strconv.ParseFloat(input, 64)
	if err != nil || math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return Reply{Text: msgBadQuantity}
	}

	perUnit, err := catalog.LowerBound(s.Price)
	if err != nil {
		// A broken price spec degrades to a zero quote, never to a failed turn.
		e.logger.Warn("Malformed price in price list",
			zap.String("material", s.ScrapType),
			zap.Error(err))
		perUnit = 0
	}

	s.QuantityKG = quantity
	s.PricePerUnit = perUnit
	s.TotalPrice = quantity * perUnit
	s.Step = StepAskName
	return Reply{Text: formatEstimate(s.TotalPrice)}
}

func (e *Engine) handleName(_ context.Context, s *Session, input string) Reply {
	if input == "" {
		return Reply{Text: msgBadName}
	}
	s.Name = input
	s.Step = StepAskPhone
	return Reply{Text: formatAskPhone(input)}
}

func (e *Engine) handlePhone(_ context.Context, s *Session, input string) Reply {
	if !IsValidPhone(input) {
		return Reply{Text: msgBadPhone}
	}
	s.Phone = input
	s.Step = StepAskEmail
	return Reply{Text: msgAskEmail}
}

func (e *Engine) handleEmail(_ context.Context, s *Session, input string) Reply {
	if !IsValidEmail(input) {
		return Reply{Text: msgBadEmail}
	}
	s.Email = input
	s.Step = StepAskAddress
	return Reply{Text: msgAskAddress}
}

func (e *Engine) handleAddress(_ context.Context, s *Session, input string) Reply {
	if input == "" {
		return Reply{Text: msgBadAddress}
	}
	s.Address = input
	s.Step = StepAskPincode
	return Reply{Text: msgAskPincode}
}

func (e *Engine) handlePincode(_ context.Context, s *Session, input string) Reply {
	if !IsValidPincode(input) {
		return Reply{Text: msgBadPincode}
	}
	s.Pincode = input
	s.Step = StepConfirmBooking
	return Reply{Text: formatConfirmBooking(s)}
}

func (e *Engine) handleConfirm(_ context.Context, s *Session, input string) Reply {
	switch {
	case isYes(input):
		s.Step = StepAskTimeSlot
		return Reply{Text: msgAskTimeSlot}
	case isNo(input):
		return Reply{Text: msgConfirmDecline}
	default:
		return Reply{Text: msgYesNo}
	}
}

// handleTimeSlot is the point of no return: a valid slot triggers identifier
// generation, agent assignment and the synchronous sink submission. If the
// sink fails, the step does not advance and the same slot can be resent
// without re-entering any earlier field.
func (e *Engine) handleTimeSlot(ctx context.Context, s *Session, input string) Reply {
	if !IsValidTimeSlot(input) {
		return Reply{Text: msgBadTimeSlot}
	}

	// Fresh identifiers on every attempt; a failed submission never leaks ids
	// into the session. The top-level rand functions are safe for concurrent
	// use, so parallel sessions need no extra locking here.
	bookingID := fmt.Sprintf("BK%04d", rand.Intn(9000)+1000)
	customerID := fmt.Sprintf("CUST%04d", rand.Intn(9000)+1000)
	agent := e.agents[rand.Intn(len(e.agents))]

	rec := BookingRecord{
		BookingID:           bookingID,
		CustomerID:          customerID,
		Name:                s.Name,
		Phone:               s.Phone,
		Email:               s.Email,
		Address:             s.Address,
		Pincode:             s.Pincode,
		TimeSlot:            input,
		Material:            s.ScrapType,
		Quantity:            s.QuantityKG,
		PricePerUnit:        s.PricePerUnit,
		EstimatedTotalPrice: s.TotalPrice,
		AgentName:           agent.Name,
		AgentContact:        agent.Contact,
		AgentVehicle:        agent.Vehicle,
	}

	if err := e.sink.Submit(ctx, rec); err != nil {
		e.logger.Error("Booking submission failed",
			zap.String("booking_id", bookingID),
			zap.Error(err))
		return Reply{Text: msgSinkDown}
	}

	s.TimeSlot = input
	s.BookingID = bookingID
	s.CustomerID = customerID
	s.Agent = &agent
	s.Step = StepAddressChange

	e.logger.Info("Booking confirmed",
		zap.String("booking_id", bookingID),
		zap.String("customer_id", customerID),
		zap.String("material", s.ScrapType),
		zap.Float64("quantity_kg", s.QuantityKG),
		zap.String("agent", agent.Name))

	return Reply{Text: formatBookingConfirmation(s)}
}

func (e *Engine) handleAddressChange(_ context.Context, s *Session, input string) Reply {
	switch {
	case isYes(input):
		s.Step = StepAskAddress
		return Reply{Text: msgNewAddress}
	case isNo(input):
		s.Step = StepThankYou
		return Reply{Text: msgThankYou}
	default:
		return Reply{Text: msgYesNo}
	}
}

func (e *Engine) handleThankYou(_ context.Context, _ *Session, _ string) Reply {
	return Reply{Text: msgAlreadyBooked}
}
