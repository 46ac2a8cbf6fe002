package logic

import "errors"

// ErrUnknownCommand marks a byte that maps to no command. It is never fatal.
var ErrUnknownCommand = errors.New("unknown command")

// Command is a single-character command from the text channel.
type Command int

const (
	CmdUnknown Command = iota
	CmdLevel100
	CmdLevel70
	CmdLevel50
	CmdLevel20
	CmdOff
	CmdOpen
	CmdClose
	CmdStatus
	CmdRamp
	CmdHelp
)

// ParseCommand maps an inbound byte to a Command. Any unrecognized byte is CmdUnknown.
func ParseCommand(ch byte) Command {
	switch ch {
	case '1':
		return CmdLevel100
	case '2':
		return CmdLevel70
	case '3':
		return CmdLevel50
	case '4':
		return CmdLevel20
	case '0':
		return CmdOff
	case 'o', 'O':
		return CmdOpen
	case 'c', 'C':
		return CmdClose
	case 's', 'S':
		return CmdStatus
	case 'g', 'G':
		return CmdRamp
	case '?':
		return CmdHelp
	}
	return CmdUnknown
}

// Percent returns the lamp level for a level command.
func (c Command) Percent() (uint8, bool) {
	switch c {
	case CmdLevel100:
		return 100, true
	case CmdLevel70:
		return 70, true
	case CmdLevel50:
		return 50, true
	case CmdLevel20:
		return 20, true
	case CmdOff:
		return 0, true
	}
	return 0, false
}

func (c Command) String() string {
	switch c {
	case CmdLevel100:
		return "LEVEL_100"
	case CmdLevel70:
		return "LEVEL_70"
	case CmdLevel50:
		return "LEVEL_50"
	case CmdLevel20:
		return "LEVEL_20"
	case CmdOff:
		return "OFF"
	case CmdOpen:
		return "OPEN"
	case CmdClose:
		return "CLOSE"
	case CmdStatus:
		return "STATUS"
	case CmdRamp:
		return "RAMP"
	case CmdHelp:
		return "HELP"
	}
	return "UNKNOWN"
}

// HelpLines is the fixed command list sent for '?'.
var HelpLines = []string{
	"Comandos disponibles:",
	"'1'-'4': Ajustar brillo lámpara (100%, 70%, 50%, 20%)",
	"'0'   : Apagar lámpara",
	"'o', 'O'  : Abrir puerta",
	"'c', 'C'  : Cerrar puerta",
	"'s', 'S'  : Estado del sistema",
	"'g', 'G'  : Aumentar gradualmente el brillo de la lámpara",
	"'?'   : Ayuda",
}
