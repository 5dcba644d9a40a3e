package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/fieldtrace/internal/adapters/http/api"
	service "github.com/okian/fieldtrace/internal/app"
	"github.com/okian/fieldtrace/internal/domain/types"
)

type submission struct {
	id, team, match, trace string
}

func post(t *testing.T, url string, s submission) int {
	body := fmt.Sprintf(`{"submission_id":%q,"team":%q,"match":%q,"trace":%s}`, s.id, s.team, s.match, s.trace)
	resp, err := http.Post(url+"/traces", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func getJSON(t *testing.T, url string, v any) int {
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp.StatusCode
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a running service behind the HTTP API", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
			service.WithDedupeSize(100),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When traces for several teams are submitted", func() {
			subs := []submission{
				// auto speaker (5) + teleop speaker (2)
				{"s1", "254", "qm1", `[[0,0.1,0.5,"spk"],[100,0.2,0.5,"spk"]]`},
				// auto amp (2)
				{"s2", "1678", "qm1", `[[0,0.9,0.5,"amp"]]`},
				// teleop trap (5), then endgame climb (3)
				{"s3", "971", "qm1", `{"state":"parsed","trace":[[0,0.5,0.5,0],[100,0.5,0.5,"trp"]]}`},
				{"s4", "971", "qm2", `[[0,0.5,0.5,0],[500,0.8,0.5,"clb"]]`},
			}
			for _, s := range subs {
				So(post(t, srv.URL, s), ShouldEqual, http.StatusAccepted)
			}
			So(post(t, srv.URL, subs[0]), ShouldEqual, http.StatusOK)

			deadline := time.Now().Add(5 * time.Second)
			for time.Now().Before(deadline) {
				if svc.GetStats()["reports"] == len(subs) {
					break
				}
				time.Sleep(10 * time.Millisecond)
			}

			Convey("Then teams are ranked by mean score", func() {
				var entries []types.Entry
				So(getJSON(t, srv.URL+"/rankings?limit=10", &entries), ShouldEqual, http.StatusOK)
				So(entries, ShouldHaveLength, 3)
				So(entries[0].Team, ShouldEqual, "254")
				So(entries[0].MeanScore, ShouldEqual, 7)
				So(entries[1].Team, ShouldEqual, "971")
				So(entries[1].MeanScore, ShouldEqual, 4)
				So(entries[1].Matches, ShouldEqual, 2)
				So(entries[2].Team, ShouldEqual, "1678")
				So(entries[2].Rank, ShouldEqual, 3)
			})

			Convey("Then a team view carries its reports", func() {
				var view types.TeamView
				So(getJSON(t, srv.URL+"/teams/971", &view), ShouldEqual, http.StatusOK)
				So(view.Rank, ShouldEqual, 2)
				So(view.Summary.Matches, ShouldEqual, 2)
				So(view.Summary.TotalScore.Median, ShouldEqual, 3)
				So(view.Reports, ShouldHaveLength, 2)

				So(getJSON(t, srv.URL+"/teams/0000", &view), ShouldEqual, http.StatusNotFound)
			})

			Convey("Then stats reflect the processed work", func() {
				var stats map[string]any
				So(getJSON(t, srv.URL+"/stats", &stats), ShouldEqual, http.StatusOK)
				So(stats["teams"], ShouldEqual, 3)
				So(stats["processed"], ShouldEqual, 4)
				So(stats["failed"], ShouldEqual, 0)
			})
		})
	})
}

