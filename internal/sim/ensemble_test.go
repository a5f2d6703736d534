package sim

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Ensemble", func() {
	factory := func(seed int64) (*Simulation, error) {
		return New(newHarmonicLangevin(4, seed)), nil
	}

	It("should run independent replicas with consecutive seeds", func() {
		results, err := NewEnsemble(factory, 4, 10).Run(context.Background(), 200, 50)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))

		for i, res := range results {
			Expect(res.Reports).To(HaveLen(4))

			alone, err := New(newHarmonicLangevin(4, 10+int64(i))).Run(context.Background(), 200, 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Reports).To(Equal(alone.Reports))
		}
		Expect(results[0].Reports).NotTo(Equal(results[1].Reports))
	})

	It("should join factory errors and keep the other results", func() {
		bad := errors.New("no such force field")
		f := func(seed int64) (*Simulation, error) {
			if seed == 1 {
				return nil, bad
			}
			return factory(seed)
		}

		results, err := NewEnsemble(f, 3, 0).Run(context.Background(), 20, 10)
		Expect(err).To(MatchError(bad))
		Expect(results[0]).NotTo(BeNil())
		Expect(results[1]).To(BeNil())
		Expect(results[2]).NotTo(BeNil())
	})
})
