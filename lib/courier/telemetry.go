package courier

import (
	"camwatch/lib/restyutil"
	"camwatch/lib/telemetry"
)

var tracer = telemetry.Tracer("camwatch.lib.courier")
var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
