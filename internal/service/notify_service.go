package service

import (
	"fmt"
	"log"
	"os"

	"parkboard/internal/db"
	"parkboard/internal/entities"
)

// NotifyService sends booking confirmations by email and drift alerts by
// SMS. Both channels are env-gated and fire-and-forget: a delivery failure
// is logged and never affects the operation that triggered it.
type NotifyService struct{}

func NewNotifyService() *NotifyService {
	return &NotifyService{}
}

func (s *NotifyService) BookingConfirmed(booking db.Booking) {
	subject := fmt.Sprintf("Parking slot %s reserved - Booking confirmed", booking.Slot)
	plainTextBody := fmt.Sprintf(
		"Hello,\n\nYour parking slot %s has been reserved.\n\n"+
			"Booking details:\n"+
			"Slot: %s\n"+
			"Reserved at: %s\n"+
			"Status: %s\n\n"+
			"Thank you for using ParkBoard.",
		booking.Slot, booking.Slot, booking.Time, booking.Status,
	)
	htmlBody := fmt.Sprintf(
		"<p>Hello,</p><p>Your parking slot <strong>%s</strong> has been reserved.</p>"+
			"<p>Reserved at: %s<br>Status: %s</p><p>Thank you for using ParkBoard.</p>",
		booking.Slot, booking.Time, booking.Status,
	)

	go func() {
		if err := SendEmailWithSendGrid(booking.Email, "", subject, plainTextBody, htmlBody); err != nil {
			log.Printf("Booking %s on slot %s created, but the confirmation email failed: %v",
				booking.UserID, booking.Slot, err)
		}
	}()
}

// CounterDrift alerts the operator phone configured in ADMIN_PHONE_NUMBER.
func (s *NotifyService) CounterDrift(report entities.DriftReport) {
	toNumber := os.Getenv("ADMIN_PHONE_NUMBER")
	if toNumber == "" {
		log.Println("ADMIN_PHONE_NUMBER not set; skipping drift alert SMS")
		return
	}
	message := fmt.Sprintf("ParkBoard: counter drift detected. Reported available=%d, derived=%d, total=%d.",
		report.ReportedAvailable, report.DerivedAvailable, report.TotalSlots)
	go func() {
		if err := SendSMS(toNumber, message); err != nil {
			log.Printf("Drift alert SMS to %s failed: %v", toNumber, err)
		}
	}()
}
