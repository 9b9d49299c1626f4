package converter

// DecodeOrderTable scans the order table until index 255 or an end marker.
// Control codes take two bytes and are followed by an OrderPad entry so
// entry positions keep matching byte positions for loop targets.
func DecodeOrderTable(music []byte) []OrderEntry {
	table := music[OrderTableOffset:]
	var orders []OrderEntry
	for i := 0; i < OrderTableLength; {
		b := table[i]
		if b != OrderSentinel {
			orders = append(orders, OrderEntry{Kind: OrderPattern, Pattern: int(b) - OrderPatternBias})
			i++
			continue
		}

		var entry OrderEntry
		switch next := table[i+1]; next {
		case OrderEndDiscriminant:
			entry = OrderEntry{Kind: OrderEnd}
		case 0x00:
			entry = OrderEntry{Kind: OrderEmpty}
		default:
			entry = OrderEntry{Kind: OrderLoop, Target: next}
		}
		orders = append(orders, entry, OrderEntry{Kind: OrderPad})
		i += 2
		if entry.Kind == OrderEnd {
			break
		}
	}
	return orders
}
