// Package command turns free-text commands into a target and an Action.
//
// The grammar is keyword driven; the first token selects the rule:
//
//	toggle|on|off|lock|unlock|open|close|disarm <target>
//	turn on|off <target>
//	set brightness|position|temperature|speed <value> <target>
//	set color <hue> <saturation> <target>
//	set colortemp <mired> <target>
//	set mode off|heat|cool|auto <target>
//	execute|run|activate [scene] <name>
//	arm stay|away|night <target>
//
// Anything else is treated as a target to toggle. Parsing is pure and
// safe for concurrent use. FromURL translates URL-scheme invocations into
// the same text grammar.
package command
