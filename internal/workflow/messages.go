package workflow

const (
	titleRejected     = "Cannot book this slot"
	reasonFull        = "This slot is fully booked"
	reasonPassed      = "This time slot has passed"
	titleConfirmed    = "Booking confirmed!"
	titleFailed       = "Booking failed"
	reasonFailed      = "The booking could not be saved. Please try again."
	titleNothing      = "No booking to cancel"
	reasonNothing     = "There are no bookings for this slot"
	titleCancelled    = "Booking cancelled"
	titleCancelFailed = "Cancellation failed"
	reasonCancelFail  = "The cancellation could not be saved. Please try again."
)
