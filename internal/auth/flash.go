// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package auth

// Flash stores a one-request message such as "success" or "error". It is
// handed to the next rendered page and then dropped.
func (s *Session) Flash(key, message string) {
	if s.FlashMessages == nil {
		s.FlashMessages = make(map[string]string)
	}
	s.FlashMessages[key] = message
	s.dirty = true
}

// WithErrors merges field validation errors for the next rendered page.
func (s *Session) WithErrors(errs map[string]string) {
	if len(errs) == 0 {
		return
	}
	if s.Errors == nil {
		s.Errors = make(map[string]string, len(errs))
	}
	for field, message := range errs {
		s.Errors[field] = message
	}
	s.dirty = true
}

// WithInput keeps submitted values so the next form render can refill them.
// When keys are given only those fields are kept, so passwords never reach
// the session.
func (s *Session) WithInput(input map[string]string, keys ...string) {
	kept := make(map[string]string)
	if len(keys) == 0 {
		for k, v := range input {
			kept[k] = v
		}
	} else {
		for _, k := range keys {
			if v, ok := input[k]; ok {
				kept[k] = v
			}
		}
	}
	if len(kept) == 0 {
		return
	}
	s.OldInput = kept
	s.dirty = true
}

// TakeFlash returns and clears the flash messages.
func (s *Session) TakeFlash() map[string]string {
	flash := s.FlashMessages
	if len(flash) > 0 {
		s.FlashMessages = nil
		s.dirty = true
	}
	return flash
}

// TakeErrors returns and clears the validation errors.
func (s *Session) TakeErrors() map[string]string {
	errs := s.Errors
	if len(errs) > 0 {
		s.Errors = nil
		s.dirty = true
	}
	return errs
}

// TakeInput returns and clears the old input.
func (s *Session) TakeInput() map[string]string {
	input := s.OldInput
	if len(input) > 0 {
		s.OldInput = nil
		s.dirty = true
	}
	return input
}

// RememberIntended records where to send the visitor after login.
func (s *Session) RememberIntended(uri string) {
	s.IntendedURL = uri
	s.dirty = true
}

// PullIntended returns and clears the remembered URL, or fallback.
func (s *Session) PullIntended(fallback string) string {
	if s.IntendedURL == "" {
		return fallback
	}
	uri := s.IntendedURL
	s.IntendedURL = ""
	s.dirty = true
	return uri
}
