package config

import "github.com/spf13/pflag"

// RegisterFlags binds pflag overrides for every control parameter onto p,
// in the teacher's own style of layering command-line flags over a loaded
// config (see cmd/direwolf and cmd/samoyed-ll2utm in the source this is
// drawn from).
func RegisterFlags(fs *pflag.FlagSet, p *Params) {
	fs.BoolVar(&p.UseFourAxis, "four-axis", p.UseFourAxis, "enable the fourth axis")
	fs.StringVar(&p.FourthAxisType, "fourth-axis-letter", p.FourthAxisType, "fourth axis letter (E, A, B, or C)")
	fs.BoolVar(&p.UseMm, "mm", p.UseMm, "display units in millimeters")
	fs.IntVar(&p.CharSendDelayMs, "char-send-delay-ms", p.CharSendDelayMs, "per-byte serial write pacing in milliseconds (stored only; the serial writer does not pace bytes)")
	fs.Float64Var(&p.WaitTime, "wait-time-sec", p.WaitTime, "default per-command response timeout in seconds")
	fs.BoolVar(&p.FilterFileCommands, "filter-file-commands", p.FilterFileCommands, "strip comments and unsupported codes from the program file")
	fs.BoolVar(&p.ReducePrecision, "reduce-precision", p.ReducePrecision, "trim decimal precision to fit the line length budget")
	fs.IntVar(&p.GrblLineBufferLen, "line-buffer-len", p.GrblLineBufferLen, "target maximum line length for precision reduction")
	fs.BoolVar(&p.ZRateLimit, "z-rate-limit", p.ZRateLimit, "cap Z feedrate, splitting X/Y from Z when exceeded")
	fs.Float64Var(&p.ZRateLimitAmount, "z-rate-limit-amount", p.ZRateLimitAmount, "maximum Z feedrate before splitting")
	fs.Float64Var(&p.XYRateAmount, "xy-rate-amount", p.XYRateAmount, "feedrate restored to the XY line after a Z-rate split")
	fs.BoolVar(&p.UseZLevelingData, "use-z-leveling", p.UseZLevelingData, "rewrite motion Z using the probed height field")
	fs.Float64Var(&p.ZLevelingOffset, "z-leveling-offset", p.ZLevelingOffset, "constant subtracted from the corrected Z for tool clearance")
	fs.Float64Var(&p.G0Feed, "g0-feed", p.G0Feed, "rapid feedrate appended to an F-less G0")
}
