package portal

import "portal-agent/internal/entity"

// Anchor locators for the portal's fixed page layout. The paths are
// best guesses into an uncontrolled page tree: the field anchors
// point at labels next to the real inputs, and the logout control
// lives in a menu that stays hidden until its containers are hovered.
var (
	usernameField = entity.Locator{
		Name:      "username_field",
		Primary:   "/html/body/div[2]/div[1]/div/div[3]/div[3]/ul/li[1]/label",
		Fallbacks: []string{"/html/body/div[2]/div[1]/div/div[3]/div[3]/ul/li[1]/input"},
	}

	passwordField = entity.Locator{
		Name:      "password_field",
		Primary:   "/html/body/div[2]/div[1]/div/div[3]/div[3]/ul/li[2]/label",
		Fallbacks: []string{"/html/body/div[2]/div[1]/div/div[3]/div[3]/ul/li[2]/input"},
	}

	submitButton = entity.Locator{
		Name:    "submit_button",
		Primary: "/html/body/div[2]/div[1]/div/div[3]/div[5]/div[1]/input",
	}

	logoutControl = entity.Locator{
		Name:    "logout_control",
		Primary: "/html/body/div[1]/div[2]/ul/li[2]/span",
		RevealPaths: []string{
			"/html/body/div[1]/div[2]/ul",
			"/html/body/div[1]/div[2]",
			"/html/body/div[1]",
		},
	}
)
