// Package fixtures holds precomputed 1024 bit safe primes, so that tests and
// local simulations do not spend minutes sampling Paillier keys.
package fixtures

import (
	"fmt"

	"github.com/cronokirby/saferith"
)

// safePrimes are p such that p ≡ 3 (mod 4) and (p-1)/2 is prime.
var safePrimes = [...]string{
	"D08769E92F80F7FDFB85EC02AFFDAED0FDE2782070757F191DCDC4D108110AC1E31C07FC253B5F7B91C5D9F203AA0572D3F2062A3D2904C535C6ACCA7D5674E1C2640720E762C72B66931F483C2D910908CF02EA6723A0CBBB1016CA696C38FEAC59B31E40584C8141889A11F7A38F5B17811D11F42CD15B8470F11C6183802B",
	"C21239C3484FC3C8409F40A9A22FABFFE26CA10C27506E3E017C2EC8C4B98D7A6D30DED0686869884BE9BAD27F5241B7313F73D19E9E4B384FABF9554B5BB4D517CBAC0268420C63D545612C9ADABEEDF20F94244E7F8F2080B0C675AC98D97C580D43375F999B1AC127EC580B89B2D302EF33DD5FD8474A241B0398F6088CA7",
	"C7B22FE784542B881C4C19CF52AF6D3A58AE9B32A5D5A1E1F4E265246667C116B3183333E311C93DC3A9D7E79E974251EC7588CDF2724C2E6D38BEB30EE201CAFD3A0033D69B67CBE4C63F6F05B2D3D3D06933CE23D30FE6E84451723BF59C3781A0C58BD7B13882647C20847D73C2D8B44DBBBC6FEE36ED6BB7EE21091F279F",
	"FE80EFFF8B7A8B646A79B746B1AB3229B8462C3272651C3145C31392D6D8D7357C5F9A058CDFC0264A06921CB3A88A4EEC8E99E07447BDC1AA0A264D3E97F99C81FB62158E7860C0F32F52469FC6EC75C7B3DF70E63C1821311BC97C0BD35699384120AD67963D1963CE3DCF4695A30472B4ACDB02650C8E5301F96B435C6623",
	"C709973C733606DAB25E3B40BE5B18DDE6A15ABCE3CDB38801972E862686ED5560250B53409C1F62DB74E6F4E5B972BAD2C8C9F5762388C61542E69A9ABA5F20F6FC18E356909478FABA2B94ED2ECA178AB6AE6A0F616A83B6BA569472933B958BF226F977A40FC9E64AE5F4EA621FD9C97F2046F06C5E7A9502DE52F4A085C3",
	"E95AF53F3FD02112EFB809E8C72128142D87E7F5E61E257F6999058BD6A7A83F01408008A0E3E45DC90C75161B134B35DA7F3370CBFD402E1667C9872A1A678539C6251448F440B64B04C2A69330E1000D68E3EB996A672D5FE65BCF8947255306728446009C905654A513F4DC19B6360E3D78A3AB33032E8A023A2AFECE4A57",
	"E2CC1CA882EFC62D58E0CB33D743F5737705FC72E69E172141A28D68EB15FA0FCD4D264B74B8FB33A06C22E81AADDC7463CD6D4E9AB33BEBCB18E6FB218C6AD7B78A6C83D673DE46BD46793FEAF4E432D86F8F3422B16EA0ECD55534AD048FA6AE7F027A5A40F7C66A26FC3DC54B476C35D119E8B977021341F66497B514982F",
	"FD91D4FF955D414C3A9BA8436E0AE9313A3C114C565F22F7D579D0FE3E117E33E1FF41ADB6AC63EC19800EA70138AE32D6A426EB38A2E13FA23E0823DBCDDC171CA7903FFE0CD7D5A149E223CBD9C195A89B040FE9193B4BE3090C893F7A99EA6DF5B43A90553677F9B89F04E99B102C986D67F5C7A4004DF0407AF2477FF74F",
	"DCB07D220265840CEC70F3B42D249249115DA457CD144B986977AAF2D34019622C80846B877FDC72817CC8E812CA03A0FB938DC6651BFAE437B2A621AFFE38D6A645EDCFC479A73B757F43E55760F132D5B4D371E3F284302F8113909C4AFADDFF8AB3976F5CD2861CF61B564E4F36DC935F54092A67D8A45ABE100A21CB8447",
	"E1CDC98A8E08B763DCE4A6728D2E53C812417991CC8092EDB983931C79EF36996838939F14E06C8C8997A8F8F76961E285481901EE9B74EFBC1977AF8AA221C167ED521620B6CB275E8286B4463FC029D7623C3F1A46D960609F7E970EB9BBB9D268DC2F51F3DBBF52D998CCC77672C78F1518E23D04F25811A14F12B1AE956B",
}

// MaxPairs is the number of distinct Paillier keys that can be built from the fixtures.
const MaxPairs = len(safePrimes) / 2

// PaillierPrimes returns the i-th pair of distinct safe primes.
// It panics if i is out of range.
func PaillierPrimes(i int) (p, q *saferith.Nat) {
	if i < 0 || i >= MaxPairs {
		panic(fmt.Sprintf("fixtures: only %d Paillier key pairs available, requested index %d", MaxPairs, i))
	}
	return mustNat(safePrimes[2*i]), mustNat(safePrimes[2*i+1])
}

func mustNat(s string) *saferith.Nat {
	n, err := new(saferith.Nat).SetHex(s)
	if err != nil {
		panic(err)
	}
	return n
}
