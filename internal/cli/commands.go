package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/codingbro/school/pkg/schoolsdk"
)

const usage = `Usage: school <command> [arguments]

Session:
  login <phone> <password>        log in with phone/password credentials
  signup <phone> <password> <first> <last>
                                  register a new account
  login-telegram                  log in via Telegram (SCHOOL_TG_INIT_DATA)
  logout                          clear the stored session
  whoami                          show the authenticated identity

Catalog:
  events [search]                 list events
  event <id>                      show one event
  courses [search]                list purchased courses
  course <id>                     show one course with its lessons
  lessons [search]                list purchased lessons
  plans <course-id>               list pricing plans of a managed course

Management (manager role):
  manage-courses [search]         list managed courses
  rename-course <id> <name>       rename a managed course
  create-event <team-id> <name> <date>
                                  create an event (date: YYYY-MM-DD)
  create-plan <course-id> <name> <price> [lesson-id ...]
                                  create a pricing plan
  delete-plan <course-id> <plan-id>
                                  delete a pricing plan
`

// Run dispatches a single CLI invocation.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("no command given")
	}

	command, rest := args[0], args[1:]

	var err error
	switch command {
	case "login":
		err = a.cmdLogin(ctx, rest)
	case "signup":
		err = a.cmdSignup(ctx, rest)
	case "login-telegram":
		err = a.cmdLoginTelegram(ctx)
	case "logout":
		err = a.session.Logout(ctx)
	case "whoami":
		err = a.cmdWhoami(ctx)
	case "events":
		err = a.cmdEvents(ctx, rest)
	case "event":
		err = a.cmdEvent(ctx, rest)
	case "courses":
		err = a.cmdCourses(ctx, rest, false)
	case "manage-courses":
		err = a.cmdCourses(ctx, rest, true)
	case "course":
		err = a.cmdCourse(ctx, rest)
	case "rename-course":
		err = a.cmdRenameCourse(ctx, rest)
	case "lessons":
		err = a.cmdLessons(ctx, rest)
	case "plans":
		err = a.cmdPlans(ctx, rest)
	case "create-event":
		err = a.cmdCreateEvent(ctx, rest)
	case "create-plan":
		err = a.cmdCreatePlan(ctx, rest)
	case "delete-plan":
		err = a.cmdDeletePlan(ctx, rest)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprint(os.Stderr, usage)
		err = fmt.Errorf("unknown command %q", command)
	}

	// An expired session already told the user to log in again through the
	// session's expiry hook; the error itself is not worth printing.
	if schoolsdk.IsAuthExpired(err) {
		a.log.Debug("session expired", "err", err)
		return nil
	}
	return err
}

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <phone> <password>")
	}
	if err := a.flow.LoginWithPassword(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Println("Logged in.")
	return nil
}

func (a *App) cmdSignup(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return errors.New("usage: signup <phone> <password> <first> <last>")
	}
	err := a.client.Signup(ctx, schoolsdk.SignupRequest{
		PhoneNumber: args[0],
		Password:    args[1],
		FirstName:   args[2],
		LastName:    args[3],
	})
	if err != nil {
		return err
	}
	fmt.Println("Account created, log in with `school login`.")
	return nil
}

func (a *App) cmdLoginTelegram(ctx context.Context) error {
	env := schoolsdk.Environment{InitData: a.cfg.TelegramInitData}
	if !env.InTelegram() {
		return errors.New("SCHOOL_TG_INIT_DATA is not set")
	}
	if err := a.flow.LoginFromEnvironment(ctx, env); err != nil {
		return err
	}
	fmt.Println("Logged in via Telegram.")
	return nil
}

func (a *App) cmdWhoami(ctx context.Context) error {
	state := a.resolver.State(ctx, time.Now())
	if !state.IsAuthenticated {
		fmt.Println("Not logged in.")
		return nil
	}

	// The local claims answer the role question; the profile endpoint
	// fills in the rest.
	profile, err := a.session.Me(ctx)
	if err != nil {
		return err
	}
	return printJSON(struct {
		*schoolsdk.UserProfile
		IsManager bool `json:"is_manager"`
	}{profile, state.IsManager})
}

func (a *App) cmdEvents(ctx context.Context, args []string) error {
	events, _, err := a.session.Events(ctx, listParams(args))
	if err != nil {
		return err
	}
	return printJSON(events)
}

func (a *App) cmdEvent(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: event <id>")
	}
	event, err := a.session.Event(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(event)
}

func (a *App) cmdCourses(ctx context.Context, args []string, managed bool) error {
	list := a.session.Courses
	if managed {
		list = a.session.ManagementCourses
	}
	courses, _, err := list(ctx, listParams(args))
	if err != nil {
		return err
	}
	return printJSON(courses)
}

func (a *App) cmdCourse(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: course <id>")
	}
	course, err := a.session.Course(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(course)
}

func (a *App) cmdRenameCourse(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: rename-course <id> <name>")
	}
	course, err := a.session.UpdateCourse(ctx, args[0], schoolsdk.UpdateCourseRequest{
		Name: &args[1],
	})
	if err != nil {
		return err
	}
	return printJSON(course)
}

func (a *App) cmdLessons(ctx context.Context, args []string) error {
	lessons, _, err := a.session.Lessons(ctx, listParams(args))
	if err != nil {
		return err
	}
	return printJSON(lessons)
}

func (a *App) cmdPlans(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: plans <course-id>")
	}
	plans, _, err := a.session.Plans(ctx, args[0], schoolsdk.ListParams{})
	if err != nil {
		return err
	}
	return printJSON(plans)
}

func (a *App) cmdCreateEvent(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: create-event <team-id> <name> <date>")
	}
	event, err := a.session.CreateEvent(ctx, schoolsdk.CreateEventRequest{
		TeamID: args[0],
		Name:   args[1],
		Date:   args[2],
	})
	if err != nil {
		return err
	}
	return printJSON(event)
}

func (a *App) cmdCreatePlan(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: create-plan <course-id> <name> <price> [lesson-id ...]")
	}
	plan, err := a.session.CreatePlan(ctx, args[0], schoolsdk.PlanRequest{
		Name:      args[1],
		Price:     args[2],
		LessonIDs: args[3:],
	})
	if err != nil {
		return err
	}
	return printJSON(plan)
}

func (a *App) cmdDeletePlan(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: delete-plan <course-id> <plan-id>")
	}
	if err := a.session.DeletePlan(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Println("Plan deleted.")
	return nil
}

// listParams turns an optional trailing argument into a search filter.
func listParams(args []string) schoolsdk.ListParams {
	if len(args) > 0 {
		return schoolsdk.ListParams{Search: args[0]}
	}
	return schoolsdk.ListParams{}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
