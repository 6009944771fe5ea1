package topics

const (
	// Reservas de slot
	SlotReserved = "slot_reserved"
	SlotReleased = "slot_released"

	// DLQ
	SlotReservedDLQ = "slot_reserved_dlq"
)
