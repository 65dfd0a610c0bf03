package middlewares

import (
	"errors"
	"net/http"
	"strings"
)

// HPPOptions configures HTTP parameter pollution protection. Duplicate keys
// are always collapsed to their first value. A non-empty Whitelist also drops
// every key not listed; an empty one keeps all keys.
type HPPOptions struct {
	CheckQuery                  bool
	CheckBody                   bool
	CheckBodyOnlyForContentType string
	Whitelist                   []string
}

func HPP(opts HPPOptions) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.CheckBody && r.Method == http.MethodPost && isCorrectContentType(r, opts.CheckBodyOnlyForContentType) {
				if err := filterBodyParams(r, opts.Whitelist); err != nil {
					var tooBig *http.MaxBytesError
					if errors.As(err, &tooBig) {
						http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
						return
					}
					http.Error(w, "Bad Request", http.StatusBadRequest)
					return
				}
			}
			if opts.CheckQuery && r.URL.RawQuery != "" {
				filterQueryParams(r, opts.Whitelist)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isCorrectContentType(r *http.Request, contentType string) bool {
	return strings.Contains(r.Header.Get("Content-Type"), contentType)
}

func filterBodyParams(r *http.Request, whitelist []string) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	for _, form := range []map[string][]string{r.Form, r.PostForm} {
		for k, v := range form {
			if !isWhitelisted(k, whitelist) {
				delete(form, k)
				continue
			}
			if len(v) > 1 {
				form[k] = v[:1]
			}
		}
	}
	return nil
}

func isWhitelisted(param string, whitelist []string) bool {
	if len(whitelist) == 0 {
		return true
	}
	for _, w := range whitelist {
		if w == param {
			return true
		}
	}
	return false
}

func filterQueryParams(r *http.Request, whitelist []string) {
	query := r.URL.Query()
	for k, v := range query {
		if !isWhitelisted(k, whitelist) {
			query.Del(k)
			continue
		}
		if len(v) > 1 {
			query[k] = v[:1]
		}
	}
	r.URL.RawQuery = query.Encode()
}

// DefaultHPPOptions collapses duplicates in the query and in urlencoded form
// bodies without dropping any key.
func DefaultHPPOptions() HPPOptions {
	return HPPOptions{
		CheckQuery:                  true,
		CheckBody:                   true,
		CheckBodyOnlyForContentType: "application/x-www-form-urlencoded",
	}
}
