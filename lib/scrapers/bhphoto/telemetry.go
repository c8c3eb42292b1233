package bhphoto

import (
	"camwatch/lib/restyutil"
	"camwatch/lib/telemetry"
)

var tracer = telemetry.Tracer("camwatch.lib.scrapers.bhphoto")
var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
