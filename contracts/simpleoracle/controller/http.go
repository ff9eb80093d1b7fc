package controller

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.dedis.ch/oracle"
	"go.dedis.ch/oracle/contracts/simpleoracle"
	"go.dedis.ch/oracle/core/host"
	"go.dedis.ch/oracle/core/store"
	"golang.org/x/xerrors"
)

// queryHandler serves GET /oracle/:label/owner and GET /oracle/:label/price
// with the JSON answer of the instance.
func queryHandler(h *host.Host) http.Handler {
	router := httprouter.New()

	router.GET(RoutePrefix+":label/:query", func(w http.ResponseWriter, r *http.Request,
		ps httprouter.Params) {

		label := ps.ByName("label")
		if label == "" {
			writeError(w, http.StatusNotFound, xerrors.Errorf("unknown path %s", r.URL.Path))
			return
		}

		var msg simpleoracle.QueryMsg

		switch ps.ByName("query") {
		case "owner":
			msg = simpleoracle.NewOwnerQuery()
		case "price":
			msg = simpleoracle.NewPriceQuery()
		default:
			writeError(w, http.StatusNotFound, xerrors.Errorf("unknown query %s", ps.ByName("query")))
			return
		}

		data, err := simpleoracle.Encode(msg)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		res, err := h.Query(label, data)
		if err != nil {
			var nf store.NotFoundError
			if xerrors.As(err, &nf) {
				writeError(w, http.StatusNotFound, err)
				return
			}

			writeError(w, http.StatusInternalServerError, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(res)
	})

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, xerrors.Errorf("unknown path %s", r.URL.Path))
	})

	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, xerrors.Errorf("method %s not allowed", r.Method))
	})

	return router
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		oracle.Logger.Error().Err(err).Msg("query failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}
