package publish_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/hiscores/internal/adapters/publish"
	"github.com/okian/hiscores/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type call struct {
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	mu     sync.Mutex
	calls  []call
	failOn string
}

func (f *fakeRunner) run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{dir: dir, name: name, args: args})
	if len(args) > 0 && args[0] == f.failOn {
		return []byte("fatal: nope\n"), errors.New("exit status 128")
	}
	return nil, nil
}

func TestGitPublisher(t *testing.T) {
	Convey("Given a git publisher with a fake runner", t, func() {
		fake := &fakeRunner{}
		fixed := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)
		p := publish.NewGitPublisher(
			publish.WithRepoDir("/srv/site"),
			publish.WithRemote("upstream"),
			publish.WithBranch("gh-pages"),
			publish.WithRunner(fake.run),
			publish.WithClock(func() time.Time { return fixed }),
		)

		Convey("When publishing succeeds", func() {
			err := p.Publish(context.Background(), "hiscores.json")

			Convey("Then add, commit and push run in order in the repo dir", func() {
				So(err, ShouldBeNil)
				So(fake.calls, ShouldHaveLength, 3)
				for _, c := range fake.calls {
					So(c.dir, ShouldEqual, "/srv/site")
					So(c.name, ShouldEqual, "git")
				}
				So(fake.calls[0].args, ShouldResemble, []string{"add", "hiscores.json"})
				So(fake.calls[1].args, ShouldResemble, []string{"commit", "-m", "Updated hiscores on 2024-03-09"})
				So(fake.calls[2].args, ShouldResemble, []string{"push", "upstream", "gh-pages"})
			})
		})

		Convey("When the commit fails", func() {
			fake.failOn = "commit"
			err := p.Publish(context.Background(), "hiscores.json")

			Convey("Then push is not attempted and the error names the step", func() {
				So(errors.Is(err, publish.ErrCommand), ShouldBeTrue)
				So(strings.Contains(err.Error(), "git commit"), ShouldBeTrue)
				So(fake.calls, ShouldHaveLength, 2)
			})
		})
	})

	Convey("Given the default publisher", t, func() {
		fake := &fakeRunner{}
		p := publish.NewGitPublisher(publish.WithRunner(fake.run), publish.WithRepoDir(""))

		Convey("Then it pushes origin main from the current dir", func() {
			So(p.Publish(context.Background(), "out.json"), ShouldBeNil)
			So(fake.calls[0].dir, ShouldEqual, ".")
			So(fake.calls[2].args, ShouldResemble, []string{"push", "origin", "main"})
		})
	})
}

func TestCommitMessage(t *testing.T) {
	Convey("The commit message carries the ISO date", t, func() {
		So(publish.CommitMessage(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, "Updated hiscores on 2023-12-01")
	})
}

func TestNoop(t *testing.T) {
	Convey("The noop publisher never fails", t, func() {
		var p publish.Publisher = publish.Noop{}
		So(p.Publish(context.Background(), "x"), ShouldBeNil)
	})
}
