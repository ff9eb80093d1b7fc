package ucli

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	urfave "github.com/urfave/cli/v2"
	"go.dedis.ch/oracle/cli"
	"golang.org/x/xerrors"
)

func TestBuild(t *testing.T) {
	builder := NewBuilder("test", nil)
	builder.(*Builder).SetUsage("a test application")

	app := builder.Build().(*urfave.App)

	app.Writer = io.Discard

	require.Equal(t, "test", app.Name)
	require.Equal(t, "a test application", app.Usage)

	err := app.Run([]string{"test"})
	require.NoError(t, err)
}

func TestSetCommand(t *testing.T) {
	builder := NewBuilder("test", nil)

	builder.SetCommand("first")
	builder.SetCommand("second")

	app := builder.Build().(*urfave.App)

	require.Len(t, app.Commands, 3)

	require.Equal(t, "first", app.Commands[0].Name)
	require.Equal(t, "second", app.Commands[1].Name)
	require.Equal(t, "help", app.Commands[2].Name)
}

func TestCommandBuilder(t *testing.T) {
	builder := NewBuilder("test", nil).(*Builder)
	cmd := builder.SetCommand("first")

	fakeAction := func(flags cli.Flags) error {
		return nil
	}

	cmd.SetAction(fakeAction)
	cmd.SetDescription("first action")
	cmd.SetFlags(cli.StringFlag{
		Name:     "arg",
		Usage:    "this is a test arg",
		Required: true,
		Value:    "default",
	})
	cmd.SetSubCommand("second")

	require.Len(t, builder.commands, 1)
	require.Len(t, builder.flags, 0)

	cmd2 := builder.commands[0]
	require.Equal(t, "first action", cmd2.description)
	require.Len(t, cmd2.flags, 1)
	require.Len(t, cmd2.subcommands, 1)
}

func TestRun_Flags(t *testing.T) {
	builder := NewBuilder("test", nil, cli.StringFlag{Name: "config", Value: ".test"})

	var got struct {
		config   string
		name     string
		duration time.Duration
		count    int
		verbose  bool
	}

	sub := builder.SetCommand("first").SetSubCommand("second")
	sub.SetFlags(
		cli.StringFlag{Name: "name", Required: true},
		cli.DurationFlag{Name: "duration", Value: time.Second},
		cli.IntFlag{Name: "count", Value: 1},
		cli.BoolFlag{Name: "verbose"},
	)
	sub.SetAction(func(flags cli.Flags) error {
		got.config = flags.Path("config")
		got.name = flags.String("name")
		got.duration = flags.Duration("duration")
		got.count = flags.Int("count")
		got.verbose = flags.Bool("verbose")

		return nil
	})

	app := builder.Build()

	err := app.Run([]string{"test", "first", "second", "--name", "alice", "--count", "3",
		"--verbose"})
	require.NoError(t, err)
	require.Equal(t, ".test", got.config)
	require.Equal(t, "alice", got.name)
	require.Equal(t, time.Second, got.duration)
	require.Equal(t, 3, got.count)
	require.True(t, got.verbose)

	out := new(bytes.Buffer)
	app.(*urfave.App).ErrWriter = out

	err = app.Run([]string{"test", "first", "second"})
	require.EqualError(t, err, `Required flag "name" not set`)
}

func TestRun_ActionError(t *testing.T) {
	builder := NewBuilder("test", nil)

	cmd := builder.SetCommand("fail")
	cmd.SetAction(func(cli.Flags) error {
		return xerrors.New("oops")
	})

	err := builder.Build().Run([]string{"test", "fail"})
	require.EqualError(t, err, "oops")
}

func TestBuildFlags(t *testing.T) {
	in := []cli.Flag{
		cli.StringFlag{
			Name:     "name1",
			Usage:    "usage1",
			Required: true,
			Value:    "value1",
		},
		cli.DurationFlag{
			Name:     "name2",
			Usage:    "usage2",
			Required: true,
			Value:    time.Minute,
		},
		cli.IntFlag{
			Name:     "name3",
			Usage:    "usage3",
			Required: true,
			Value:    1,
		},
		cli.BoolFlag{
			Name:     "name4",
			Usage:    "usage4",
			Required: true,
			Value:    true,
		},
	}

	out := buildFlags("APP_", in)
	require.Len(t, out, 4)

	require.Equal(t, "name1", out[0].Names()[0])
	require.Equal(t, "name2", out[1].Names()[0])
	require.Equal(t, "name3", out[2].Names()[0])
	require.Equal(t, "name4", out[3].Names()[0])

	require.Equal(t, []string{"APP_NAME1"}, out[0].(*urfave.StringFlag).EnvVars)
	require.Equal(t, []string{"APP_NAME4"}, out[3].(*urfave.BoolFlag).EnvVars)
}

func TestRun_Env(t *testing.T) {
	t.Setenv("MY_APP_CONFIG", "/from/env")
	t.Setenv("MY_APP_BLOCK_TIME", "2s")
	t.Setenv("MY_APP_HEIGHTS", "4")

	builder := NewBuilder("my-app", nil, cli.StringFlag{Name: "config", Value: ".test"})

	var config string
	var blockTime time.Duration
	var heights int

	cmd := builder.SetCommand("next")
	cmd.SetFlags(
		cli.DurationFlag{Name: "block-time", Value: time.Second},
		cli.IntFlag{Name: "heights", Value: 1},
	)
	cmd.SetAction(func(flags cli.Flags) error {
		config = flags.Path("config")
		blockTime = flags.Duration("block-time")
		heights = flags.Int("heights")
		return nil
	})

	err := builder.Build().Run([]string{"my-app", "next", "--heights", "5"})
	require.NoError(t, err)
	require.Equal(t, "/from/env", config)
	require.Equal(t, 2*time.Second, blockTime)
	require.Equal(t, 5, heights)
}

func TestBuildFlags_Panic(t *testing.T) {
	defer func() {
		r := recover()
		require.Equal(t, "flag type '<nil>' not supported", r)
	}()

	buildFlags("", []cli.Flag{nil})
}

func TestMakeAction(t *testing.T) {
	res := makeAction(nil)
	require.Nil(t, res)

	isCalled := false
	fakeAction := func(flags cli.Flags) error {
		require.Nil(t, flags)
		isCalled = true
		return nil
	}

	res = makeAction(fakeAction)
	require.NotNil(t, res)

	out := res(nil)
	require.NoError(t, out)
	require.True(t, isCalled)
}
