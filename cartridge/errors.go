package cartridge

import "errors"

// ErrParkingZone is returned by ToLogical when the position lies inside
// the ADR50 parking zone, which has no logical address. The spec calls
// this case "InvalidOperation"; it is distinct from the general
// ErrCartridgeUnsupported used for whole operations a Kind never
// implements.
var ErrParkingZone = errors.New("cartridge: position is in the parking zone")
