package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/bodgit/greenfield"
	"github.com/bodgit/greenfield/quantization"
	"github.com/bodgit/greenfield/term"
	"github.com/urfave/cli/v2"
)

const defaultScheme = "5,6,5"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func scheme(c *cli.Context) (quantization.Scheme, error) {
	return quantization.Parse(c.String("scheme"))
}

var schemeFlag = &cli.StringFlag{
	Name:    "scheme",
	Aliases: []string{"s"},
	EnvVars: []string{"GREENFIELD_SCHEME"},
	Value:   defaultScheme,
	Usage:   "bits per red, green and blue channel",
}

func main() {
	app := cli.NewApp()

	app.Name = "greenfield"
	app.Usage = "greenfield image conversion utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"GREENFIELD_DB"},
			Usage:   "path to conversion catalog",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Convert an image",
			Description: "Images are written in the format given by the extension of DESTINATION, falling back to greenfield",
			ArgsUsage:   "SOURCE DESTINATION",
			Flags:       []cli.Flag{schemeFlag},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				s, err := scheme(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				m, err := greenfield.Load(c.Args().Get(0), s)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				newLogger(c).Printf("Loaded \"%s\" %v\n", c.Args().Get(0), m)

				if err := greenfield.Save(m, c.Args().Get(1)); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "info",
			Usage:       "Describe an image",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				schemeFlag,
				&cli.IntFlag{
					Name:  "palette",
					Usage: "show this many dominant colors",
				},
				&cli.BoolFlag{
					Name:  "pixels",
					Usage: "show every pixel",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				s, err := scheme(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				m, err := greenfield.Load(c.Args().First(), s)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				w, h := m.Dimensions()
				fmt.Printf("%s: %dx%d %v\n", c.Args().First(), w, h, m.Scheme())

				if n := c.Int("palette"); n > 0 {
					fmt.Print(term.Palette(greenfield.Palette(m, n)))
				}

				if c.Bool("pixels") {
					for p := range m.Pixels() {
						fmt.Println(term.Pixel(m, p))
					}
				}

				return nil
			},
		},
		{
			Name:        "batch",
			Usage:       "Convert a directory of images",
			Description: "Every image under SOURCE is written to the same relative path under DESTINATION as a greenfield image",
			ArgsUsage:   "SOURCE DESTINATION",
			Flags: []cli.Flag{
				schemeFlag,
				&cli.IntFlag{
					Name:    "workers",
					Aliases: []string{"j"},
					Value:   runtime.GOMAXPROCS(0),
					Usage:   "number of images to convert at once",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				s, err := scheme(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				var catalog *greenfield.Catalog
				if db := c.String("db"); db != "" {
					if catalog, err = greenfield.NewCatalog(db); err != nil {
						return cli.NewExitError(err, 1)
					}
					defer catalog.Close()
				}

				if err := greenfield.New(catalog, newLogger(c)).ConvertDir(c.Args().Get(0), c.Args().Get(1), s, c.Int("workers")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
