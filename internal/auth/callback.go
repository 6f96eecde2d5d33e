package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const successPage = `<html>
<head><title>autoform</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
<h1 style="color: #7C5CFF;">Signed in</h1>
<p>You can close this tab and return to the terminal.</p>
<script>window.close();</script>
</body>
</html>`

type callbackResult struct {
	code string
	err  error
}

// callbackServer receives the single redirect that ends a consent flow.
type callbackServer struct {
	srv     *http.Server
	results chan callbackResult
	done    chan struct{}
}

func startCallbackServer(ln net.Listener, path, expectedState string) *callbackServer {
	cs := &callbackServer{
		results: make(chan callbackResult, 1),
		done:    make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != expectedState:
			http.Error(w, "Invalid state", http.StatusBadRequest)
			cs.deliver(callbackResult{err: &AuthError{Kind: KindUnknown, Err: errors.New("callback state mismatch")}})
		case q.Get("error") != "":
			code := q.Get("error")
			http.Error(w, "Sign-in failed: "+code, http.StatusBadRequest)
			cs.deliver(callbackResult{err: &AuthError{Kind: kindFromCode(code), Err: fmt.Errorf("consent returned %s", code)}})
		case q.Get("code") == "":
			http.Error(w, "No code received", http.StatusBadRequest)
			cs.deliver(callbackResult{err: &AuthError{Kind: KindUnknown, Err: errors.New("callback carried no code")}})
		default:
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(successPage))
			cs.deliver(callbackResult{code: q.Get("code")})
		}
	})
	cs.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		defer close(cs.done)
		if err := cs.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cs.deliver(callbackResult{err: &AuthError{Kind: KindUnknown, Err: err}})
		}
	}()
	return cs
}

// deliver keeps the first result and drops later ones.
func (cs *callbackServer) deliver(r callbackResult) {
	select {
	case cs.results <- r:
	default:
	}
}

// close stops the server and waits for it to exit.
func (cs *callbackServer) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cs.srv.Shutdown(ctx); err != nil {
		_ = cs.srv.Close()
	}
	<-cs.done
}
