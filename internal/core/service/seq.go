package service

import "iter"

// first returns the first record of seq. The scan stops at the first error.
func first[T any](seq iter.Seq2[*T, error]) (*T, bool, error) {
	for rec, err := range seq {
		if err != nil {
			return nil, false, err
		}
		return rec, true, nil
	}
	return nil, false, nil
}

func collect[T any](seq iter.Seq2[*T, error]) ([]T, error) {
	out := make([]T, 0)
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}
