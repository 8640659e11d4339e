package testtracks_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/viant/afs"

	"github.com/okian/cascade/internal/adapters/source"
	"github.com/okian/cascade/internal/testtracks"
	"github.com/okian/cascade/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func smallConfig(dir string) testtracks.Config {
	cfg := testtracks.DefaultConfig()
	cfg.Applicants = 120
	cfg.Tracks = 4
	cfg.MinCapacity = 3
	cfg.MaxCapacity = 15
	cfg.WithdrawRate = 0.1
	cfg.OutDir = dir
	return cfg
}

func TestGenerate(t *testing.T) {
	Convey("Given a generator config", t, func() {
		cfg := smallConfig(t.TempDir())

		Convey("When generating twice with the same seed", func() {
			a, errA := testtracks.Generate(cfg)
			b, errB := testtracks.Generate(cfg)

			Convey("Then both fixtures should be identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a, ShouldResemble, b)
				So(a.MyID, ShouldNotBeEmpty)
			})
		})

		Convey("When generating with another seed", func() {
			a, _ := testtracks.Generate(cfg)
			cfg.Seed++
			b, _ := testtracks.Generate(cfg)

			Convey("Then the applicants should differ", func() {
				So(a.MyID, ShouldNotEqual, b.MyID)
			})
		})

		Convey("Then every applicant should have distinct priorities starting at 1", func() {
			fx, err := testtracks.Generate(cfg)
			So(err, ShouldBeNil)
			So(len(fx.Capacities), ShouldEqual, cfg.Tracks)

			prios := map[string][]int{}
			for _, tr := range fx.Tracks {
				for _, r := range tr.Records {
					prios[r.ID] = append(prios[r.ID], r.Priority)
				}
			}
			So(len(prios), ShouldEqual, cfg.Applicants)
			for _, ps := range prios {
				seen := map[int]bool{}
				for _, p := range ps {
					So(p, ShouldBeGreaterThanOrEqualTo, 1)
					So(p, ShouldBeLessThanOrEqualTo, len(ps))
					So(seen[p], ShouldBeFalse)
					seen[p] = true
				}
			}
		})

		Convey("When every applicant has a single choice", func() {
			cfg := testtracks.DefaultConfig()
			cfg.Applicants = 40
			cfg.MaxChoices = 1
			fx, err := testtracks.Generate(cfg)
			So(err, ShouldBeNil)

			for _, tr := range fx.Tracks {
				for _, r := range tr.Records {
					So(r.Priority, ShouldEqual, 1)
				}
			}
		})

		Convey("When the config is invalid", func() {
			cfg.Tracks = 0
			_, err := testtracks.Generate(cfg)

			Convey("Then generation should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given generated fixtures over several seeds", t, func() {
		for seed := uint64(1); seed <= 20; seed++ {
			cfg := smallConfig("")
			cfg.Seed = seed
			fx, err := testtracks.Generate(cfg)
			So(err, ShouldBeNil)
			So(testtracks.Verify(fx.Tracks, fx.Capacities), ShouldBeNil)
		}
	})
}

func TestWrite(t *testing.T) {
	for _, enc := range []string{testtracks.EncodingUTF8, testtracks.EncodingWindows1251} {
		Convey("Given a fixture written as "+enc, t, func() {
			ctx := context.Background()
			dir := t.TempDir()
			cfg := smallConfig(dir)
			cfg.Encoding = enc
			fx, err := testtracks.Generate(cfg)
			So(err, ShouldBeNil)

			urls, err := testtracks.Write(ctx, afs.New(), cfg, fx)
			So(err, ShouldBeNil)
			So(len(urls), ShouldEqual, cfg.Tracks)

			Convey("Then the config file should exist", func() {
				data, err := os.ReadFile(filepath.Join(dir, testtracks.ConfigFileName))
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, fx.MyID)
			})

			Convey("Then the source reader should load the same records", func() {
				r := source.NewReader()
				for i, u := range urls {
					track, err := r.Load(ctx, u)
					So(err, ShouldBeNil)
					So(len(track.Records), ShouldEqual, len(fx.Tracks[i].Records))
					for n, rec := range track.Records {
						So(rec.ID, ShouldEqual, fx.Tracks[i].Records[n].ID)
						So(rec.Priority, ShouldEqual, fx.Tracks[i].Records[n].Priority)
						So(rec.Scores, ShouldResemble, fx.Tracks[i].Records[n].Scores)
					}
				}
			})
		})
	}
}
