package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tomadori/focusdeck/internal/auth"
	fderrors "github.com/tomadori/focusdeck/internal/errors"
)

// profileModel handles the sign-in gate shown before the main views
// and the profile editor opened with p. Accounts are local and
// passwordless; the email is just the account key.
type profileModel struct {
	svc    *services
	width  int
	height int

	formActive bool
	form       *huh.Form
	formType   string // "signin", "profile"

	// Form values as pointers (survive value copies)
	action      *string
	email       *string
	displayName *string
	avatarID    *string
}

func newProfileModel(svc *services) profileModel {
	action, email, name, avatar := "signin", "", "", auth.DefaultAvatar
	return profileModel{
		svc:         svc,
		action:      &action,
		email:       &email,
		displayName: &name,
		avatarID:    &avatar,
	}
}

func (m *profileModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m profileModel) showSignInForm() (profileModel, tea.Cmd) {
	*m.action = "signin"
	*m.email = ""
	*m.displayName = ""
	m.formType = "signin"

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Welcome to focusdeck").
				Options(
					huh.NewOption("Sign in", "signin"),
					huh.NewOption("Create account", "signup"),
				).Value(m.action),
			huh.NewInput().Title("Email").Value(m.email),
			huh.NewInput().Title("Display name (new accounts)").Value(m.displayName),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m profileModel) showProfileForm() (profileModel, tea.Cmd) {
	user, ok := m.svc.auth.Current()
	if !ok {
		return m.showSignInForm()
	}
	*m.displayName = user.DisplayName
	*m.avatarID = user.AvatarID
	m.formType = "profile"

	avatarOptions := make([]huh.Option[string], len(auth.Avatars))
	for i, a := range auth.Avatars {
		avatarOptions[i] = huh.NewOption(a, a)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Display name").Value(m.displayName),
			huh.NewSelect[string]().Title("Avatar").Options(avatarOptions...).Value(m.avatarID),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m profileModel) update(msg tea.Msg) (profileModel, tea.Cmd) {
	if !m.formActive || m.form == nil {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		// The sign-in gate cannot be escaped; profile editing can.
		if msg.String() == "esc" && m.formType == "profile" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		switch m.formType {
		case "signin":
			return m.submitSignIn()
		case "profile":
			return m.submitProfile()
		}
	}

	return m, cmd
}

func (m profileModel) submitSignIn() (profileModel, tea.Cmd) {
	action, email, name := *m.action, *m.email, *m.displayName
	return m, func() tea.Msg {
		if action == "signup" {
			user, err := m.svc.auth.SignUp(email, name)
			if err != nil {
				if errors.Is(err, fderrors.ErrEmailTaken) {
					return statusMsg{text: "That email already has an account", isError: true}
				}
				return statusMsg{text: fmt.Sprintf("Sign up failed: %v", err), isError: true}
			}
			return signedInMsg{user: user}
		}

		user, err := m.svc.auth.SignIn(email)
		if err != nil {
			if errors.Is(err, fderrors.ErrUserNotFound) {
				return statusMsg{text: "No account for that email, create one instead", isError: true}
			}
			return statusMsg{text: fmt.Sprintf("Sign in failed: %v", err), isError: true}
		}
		return signedInMsg{user: user}
	}
}

func (m profileModel) submitProfile() (profileModel, tea.Cmd) {
	name, avatar := *m.displayName, *m.avatarID
	return m, func() tea.Msg {
		if err := m.svc.auth.UpdateProfile(name, avatar); err != nil {
			return statusMsg{text: fmt.Sprintf("Profile update failed: %v", err), isError: true}
		}
		return statusMsg{text: "Profile updated"}
	}
}

func (m profileModel) view() string {
	w := m.width - 4
	if w < 20 {
		w = 20
	}

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Sign In")
		if m.formType == "profile" {
			title = titleStyle.Render("Profile")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}
	return ""
}
