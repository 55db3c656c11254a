package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jsphweid/noted/abc"
	"github.com/jsphweid/noted/codec"
	"github.com/jsphweid/noted/constants"
	"github.com/jsphweid/noted/db"
	"github.com/jsphweid/noted/model"
	"github.com/jsphweid/noted/playback"
	"github.com/jsphweid/noted/timing"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&servePort, "port", "p", constants.GetPort(), "port to listen on")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the editor API",
	Long:  `Serves rendering, timing and playback schedules over HTTP and stores compositions in DynamoDB.`,
	Run: func(cmd *cobra.Command, args []string) {
		store, err := db.New(constants.GetDynamoEndpoint(), constants.GetRegion(), constants.GetTable())
		cobra.CheckErr(err)
		serve(NewServer(store))
	},
}

// CompositionStore keeps compositions by id.
type CompositionStore interface {
	Put(ctx context.Context, c model.Composition) (string, error)
	Get(ctx context.Context, id string) (model.Composition, error)
}

type Server struct {
	store CompositionStore
}

func NewServer(store CompositionStore) *Server {
	return &Server{store: store}
}

type renderRequest struct {
	Composition codec.Document `json:"composition"`
	Options     abc.Options    `json:"options"`
}

type scheduleRequest struct {
	Composition codec.Document `json:"composition"`
	StartBar    int            `json:"startBar"`
	EndBar      int            `json:"endBar"`
	Repeat      bool           `json:"repeat"`
}

type noteTime struct {
	Note    string  `json:"note"`
	Seconds float64 `json:"seconds"`
}

type timeKeysResponse struct {
	BarCount int              `json:"barCount"`
	Duration float64          `json:"duration"`
	TimeKeys []timing.TimeKey `json:"timeKeys"`
	Notes    []noteTime       `json:"notes"`
}

type scheduledEvent struct {
	Note     string  `json:"note"`
	Sample   string  `json:"sample"`
	Time     float64 `json:"time"`
	Duration float64 `json:"duration,omitempty"`
}

type scheduleResponse struct {
	Start  float64          `json:"start"`
	End    float64          `json:"end"`
	Repeat bool             `json:"repeat"`
	Events []scheduledEvent `json:"events"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("[warn] could not encode response: %v\n", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(model.ErrorResponse{Error: "could not encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.Printf("[warn] could not write response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, db.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidFormat),
		errors.Is(err, model.ErrOutOfBounds),
		errors.Is(err, model.ErrUnresolvableSubdivision),
		errors.Is(err, model.ErrUnsupportedMeter),
		errors.Is(err, model.ErrInvalidRescale):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrapf(model.ErrInvalidFormat, "Could not unmarshal request body: %v", err)
	}
	return nil
}

func (s *Server) HandleRender(w http.ResponseWriter, r *http.Request) {
	var input renderRequest
	if err := decode(r, &input); err != nil {
		writeError(w, err)
		return
	}

	c, err := input.Composition.Composition()
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := abc.Render(c, input.Options)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.RenderResponse{Abc: res})
}

func (s *Server) HandleTimeKeys(w http.ResponseWriter, r *http.Request) {
	var input codec.Document
	if err := decode(r, &input); err != nil {
		writeError(w, err)
		return
	}

	c, err := input.Composition()
	if err != nil {
		writeError(w, err)
		return
	}

	timeline := timing.NewTimeline(c)
	times, err := timeline.NoteTimes(c)
	if err != nil {
		writeError(w, err)
		return
	}

	res := timeKeysResponse{
		BarCount: timeline.BarCount,
		Duration: timeline.Duration(),
		TimeKeys: timeline.Keys,
		Notes:    make([]noteTime, 0, len(times)),
	}
	for _, t := range times {
		res.Notes = append(res.Notes, noteTime{Note: codec.NoteToString(t.Note), Seconds: t.Seconds})
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	var input scheduleRequest
	if err := decode(r, &input); err != nil {
		writeError(w, err)
		return
	}

	c, err := input.Composition.Composition()
	if err != nil {
		writeError(w, err)
		return
	}

	schedule, err := playback.BuildSchedule(c, playback.Options{
		StartBar: input.StartBar,
		EndBar:   input.EndBar,
		Repeat:   input.Repeat,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	res := scheduleResponse{
		Start:  schedule.Start,
		End:    schedule.End,
		Repeat: schedule.Repeat,
		Events: make([]scheduledEvent, 0, len(schedule.Events)),
	}
	for _, e := range schedule.Events {
		res.Events = append(res.Events, scheduledEvent{
			Note:     codec.NoteToString(e.Note),
			Sample:   e.Sample.Name,
			Time:     e.Time,
			Duration: e.Duration,
		})
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) HandleCreateComposition(w http.ResponseWriter, r *http.Request) {
	var input codec.Document
	if err := decode(r, &input); err != nil {
		writeError(w, err)
		return
	}

	c, err := input.Composition()
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := s.store.Put(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.IdResponse{Id: id})
}

func (s *Server) HandleGetComposition(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, codec.NewDocument(c))
}

// Router wires the handlers and allows requests from any origin so the
// browser editor can call it.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/render", s.HandleRender).Methods("POST")
	router.HandleFunc("/timekeys", s.HandleTimeKeys).Methods("POST")
	router.HandleFunc("/schedule", s.HandleSchedule).Methods("POST")
	router.HandleFunc("/compositions", s.HandleCreateComposition).Methods("POST")
	router.HandleFunc("/compositions/{id}", s.HandleGetComposition).Methods("GET")

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(router)
}

func serve(s *Server) {
	addr := ":" + servePort
	fmt.Printf("listening on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, s.Router()))
}
