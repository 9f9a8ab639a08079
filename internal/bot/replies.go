package bot

import "fmt"

const (
	msgWelcome = "Hi! 👋 I can get you a quote for your scrap and book a pickup.\n\nWould you like to proceed? (Yes/No)"

	msgYesNo          = "Please answer Yes or No."
	msgAskScrapType   = "Great! What type of scrap do you have?"
	msgDeclined       = "Alright! Let me know if you need help later. Thank you!"
	msgNotFound       = "Sorry, I couldn't find that material. Try another one."
	msgBadQuantity    = "Please enter a valid quantity in numbers."
	msgAskName        = "May I have your name, please?"
	msgBadName        = "Please tell me your name."
	msgBadPhone       = "That doesn't look right. Please enter a 10-digit phone number."
	msgAskEmail       = "And your email address?"
	msgBadEmail       = "That doesn't look like an email address. Please try again (e.g., name@example.com)."
	msgAskAddress     = "Please provide your address for pickup."
	msgBadAddress     = "Please enter your pickup address."
	msgAskPincode     = "What's your area pincode? (6 digits)"
	msgBadPincode     = "Please enter a valid 6-digit pincode."
	msgConfirmDecline = "Okay, let me know if you need assistance later. Thank you!"
	msgAskTimeSlot    = "What time slot do you prefer for pickup? (e.g., 10 AM - 12 PM or 14:00 - 16:00)"
	msgBadTimeSlot    = "❌ Invalid time format! Please enter a valid time slot.\n\nExamples:\n- `10 AM - 12 PM`\n- `14:00 - 16:00`"
	msgSinkDown       = "⚠️ Sorry, we couldn't save your booking just now. Please send the time slot again in a moment."
	msgNewAddress     = "Please provide your new address."
	msgThankYou       = "✅ Thank you! Your pickup is confirmed.\n\nWe appreciate your contribution to recycling! ♻️"
	msgAlreadyBooked  = "Your booking is already confirmed. Thank you! 😊"
	msgStartOver      = "I'm not sure how to proceed. Let's start over!\n\nWould you like a scrap pickup quote? (Yes/No)"
)

func formatPriceQuote(name, price, unit string) string {
	return fmt.Sprintf("The price of %s is ₹%s per %s.\n\nHow much quantity do you have in KGs?", name, price, unit)
}

func formatEstimate(total float64) string {
	return fmt.Sprintf("Your estimated total price is ₹%.2f.\n\n%s", total, msgAskName)
}

func formatAskPhone(name string) string {
	return fmt.Sprintf("Thanks, %s! What's your 10-digit phone number?", name)
}

func formatConfirmBooking(s *Session) string {
	return fmt.Sprintf(
		"Here's what I have: %.2f KGs of %s, estimated at ₹%.2f, pickup at %s (%s).\n\nDo you want to proceed with booking? (Yes/No)",
		s.QuantityKG, s.ScrapType, s.TotalPrice, s.Address, s.Pincode)
}

func formatBookingConfirmation(s *Session) string {
	return fmt.Sprintf(
		"📌 Booking Confirmed! 🎉\n\n"+
			"🔹 Booking ID: %s\n"+
			"🆔 Customer ID: %s\n\n"+
			"🏠 Pickup Details:\n"+
			"👤 Name: %s\n"+
			"📞 Phone: %s\n"+
			"📍 Address: %s\n"+
			"⏰ Time Slot: %s\n\n"+
			"📦 Scrap Details:\n"+
			"🗑️ Material: %s\n"+
			"⚖️ Quantity: %g KGs\n"+
			"💰 Estimated Price: ₹%.2f\n\n"+
			"👨‍🔧 Agent Details:\n"+
			"👤 Name: %s\n"+
			"📞 Contact: %s\n"+
			"🚛 Vehicle Number: %s\n\n"+
			"Do you want to change the address? (Yes/No)",
		s.BookingID,
		s.CustomerID,
		s.Name,
		s.Phone,
		s.Address,
		s.TimeSlot,
		s.ScrapType,
		s.QuantityKG,
		s.TotalPrice,
		s.Agent.Name,
		s.Agent.Contact,
		s.Agent.Vehicle,
	)
}

// WelcomeMessage is the greeting a transport sends when a conversation is
// (re)opened; the engine itself only ever replies to input.
func WelcomeMessage() string {
	return msgWelcome
}
