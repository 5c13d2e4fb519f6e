package middleware

import (
	. "arena/lib/maintenance"

	"github.com/gofiber/fiber/v2"
)

func OnMode(required Mode) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state_machine := c.Locals("StateMachine").(*StateMachine)
		mode, _, _ := state_machine.Get()

		if mode != required {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Arena server in invalid mode",
			})
		}
		return c.Next()
	}
}

func OnState(required State) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state_machine := c.Locals("StateMachine").(*StateMachine)
		_, state, _ := state_machine.Get()

		if state != required {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Arena server in invalid state",
			})
		}
		return c.Next()
	}
}

func OnSubstate(required SubState) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state_machine := c.Locals("StateMachine").(*StateMachine)
		_, _, substate := state_machine.Get()

		if substate != required {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Arena server in invalid state",
			})
		}
		return c.Next()
	}
}

// OnMSS requires an exact mode/state/substate triple.
func OnMSS(required_mode Mode, required_state State, required_substate SubState) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state_machine := c.Locals("StateMachine").(*StateMachine)
		mode, state, substate := state_machine.Get()

		if mode != required_mode || state != required_state || substate != required_substate {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Arena server in invalid state",
			})
		}
		return c.Next()
	}
}
