// Package command provides the command registry, parser, dispatcher and
// built-in command definitions.
package command

// Categories for organizing commands.
const (
	CategoryMovement = "movement"
	CategoryWorld    = "world"
	CategorySystem   = "system"
)

// Handler identifiers mapping commands to dispatcher branches.
const (
	HandlerMove      = "move"
	HandlerHome      = "home"
	HandlerGet       = "get"
	HandlerDrop      = "drop"
	HandlerLook      = "look"
	HandlerInventory = "inventory"
	HandlerScore     = "score"
	HandlerHelp      = "help"
	HandlerQuit      = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage is the argument synopsis shown by help.
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (movement, world, system).
	Category string
	// Handler selects the dispatcher branch.
	Handler string
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		// Movement commands
		{Name: "go", Aliases: []string{"goto", "move"}, Usage: "<direction>", Help: "Go through an exit", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "home", Help: "Go home, leaving your possessions behind", Category: CategoryMovement, Handler: HandlerHome},

		// World commands
		{Name: "get", Aliases: []string{"take"}, Usage: "<object>", Help: "Pick up a thing or an unlinked exit", Category: CategoryWorld, Handler: HandlerGet},
		{Name: "drop", Aliases: []string{"throw"}, Usage: "<object>", Help: "Put down something you carry", Category: CategoryWorld, Handler: HandlerDrop},
		{Name: "look", Aliases: []string{"l", "read"}, Usage: "[object]", Help: "Look around or at something", Category: CategoryWorld, Handler: HandlerLook},
		{Name: "inventory", Aliases: []string{"i", "inv"}, Help: "List what you carry", Category: CategoryWorld, Handler: HandlerInventory},
		{Name: "score", Help: "Show your pennies", Category: CategoryWorld, Handler: HandlerScore},

		// System commands
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Help: "Disconnect from the game", Category: CategorySystem, Handler: HandlerQuit},
	}
}
