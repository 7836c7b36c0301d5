package client

// localCommands are handled entirely on the client. The misspelled
// disconnect alias is kept for people who type it.
var localCommands = map[string]func(*Session){
	"!help":       (*Session).cmdHelp,
	"!gravemind":  (*Session).cmdGravemind,
	"!spartan":    (*Session).cmdSpartan,
	"!disconnect": (*Session).cmdDisconnect,
	"!disconect":  (*Session).cmdDisconnect,
}

func (s *Session) cmdHelp() {
	s.emit(DisplayLine{Time: "SYSTEM", Author: "CORTANA", Text: "Commands: !help !gravemind !spartan !disconnect", Kind: LineSystem})
}

func (s *Session) cmdGravemind() {
	s.setMode(ModeGravemind)
	s.emit(DisplayLine{Time: "SYSTEM", Author: "GRAVEMIND", Text: "Switching to Gravemind interface...", Kind: LineSystem})
}

func (s *Session) cmdSpartan() {
	s.setMode(ModeSpartan)
	s.emit(DisplayLine{Time: "SYSTEM", Author: "UNSC", Text: "Switching to Spartan interface...", Kind: LineSystem})
}

func (s *Session) cmdDisconnect() {
	s.Stop(StopLocalCommand)
}
