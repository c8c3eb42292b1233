package scraperapi

import (
	"camwatch/lib/restyutil"
	"camwatch/lib/telemetry"
)

var tracer = telemetry.Tracer("camwatch.lib.scraperapi")
var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
