package bot

// Step identifies the single current point in the dialogue sequence.
type Step string

const (
	StepStart          Step = "start"
	StepAskScrapType   Step = "ask_scrap_type"
	StepAskQuantity    Step = "ask_quantity"
	StepAskName        Step = "ask_name"
	StepAskPhone       Step = "ask_phone"
	StepAskEmail       Step = "ask_email"
	StepAskAddress     Step = "ask_address"
	StepAskPincode     Step = "ask_pincode"
	StepConfirmBooking Step = "confirm_booking"
	StepAskTimeSlot    Step = "ask_time_slot"
	StepAddressChange  Step = "address_change"
	StepThankYou       Step = "thank_you"
)

// Session carries the fields collected so far in one conversation. Each field
// is set only by the step that asks for it and survives until a full reset.
type Session struct {
	Step         Step    `json:"step"`
	ScrapType    string  `json:"scrap_type,omitempty"`
	Price        string  `json:"price,omitempty"`
	Unit         string  `json:"unit,omitempty"`
	QuantityKG   float64 `json:"quantity_kg,omitempty"`
	PricePerUnit float64 `json:"price_per_unit,omitempty"`
	TotalPrice   float64 `json:"total_price,omitempty"`
	Name         string  `json:"name,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	Email        string  `json:"email,omitempty"`
	Address      string  `json:"address,omitempty"`
	Pincode      string  `json:"pincode,omitempty"`
	TimeSlot     string  `json:"time_slot,omitempty"`
	BookingID    string  `json:"booking_id,omitempty"`
	CustomerID   string  `json:"customer_id,omitempty"`
	Agent        *Agent  `json:"agent,omitempty"`
}

// Reset drops every collected field and returns the session to the start of
// the dialogue.
func (s *Session) Reset() {
	*s = Session{Step: StepStart}
}

// Agent is one entry of the fixed pickup roster. Agents are copied into the
// booking record, never persisted on their own.
type Agent struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Vehicle string `json:"vehicle"`
}

// DefaultAgents returns the pickup roster.
func DefaultAgents() []Agent {
	return []Agent{
		{Name: "Ramesh Kumar", Contact: "+91 98765 43210", Vehicle: "AP 23 AB 4567"},
		{Name: "Suresh Verma", Contact: "+91 91234 56789", Vehicle: "TS 09 CD 7890"},
		{Name: "Vikram Singh", Contact: "+91 87876 54321", Vehicle: "KA 05 EF 1234"},
	}
}

// BookingRecord is the flattened, write-once snapshot of a finished booking
// handed to the booking sink.
type BookingRecord struct {
	BookingID           string  `json:"bookingId"`
	CustomerID          string  `json:"customerId"`
	Name                string  `json:"name"`
	Phone               string  `json:"phone"`
	Email               string  `json:"email"`
	Address             string  `json:"address"`
	Pincode             string  `json:"pincode"`
	TimeSlot            string  `json:"timeSlot"`
	Material            string  `json:"material"`
	Quantity            float64 `json:"quantity"`
	PricePerUnit        float64 `json:"pricePerUnit"`
	EstimatedTotalPrice float64 `json:"estimatedTotalPrice"`
	AgentName           string  `json:"agentName"`
	AgentContact        string  `json:"agentContact"`
	AgentVehicle        string  `json:"agentVehicle"`
}
